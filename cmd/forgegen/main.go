// forgegen derives props types and construct registrations for the types
// named with -type, in the package of the given (or current) directory.
//
// A struct field tagged `forge:"prop"` becomes a deferred field in the
// generated props type; every other field is mirrored as plain data. A
// closed marker interface is treated as a sum type and derives one props
// variant per implementing struct.
//
// Typical use with go generate:
//
//	//go:generate go run github.com/forgecs/forge/cmd/forgegen -type=Camera,Shape
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgecs/forge/internal/codegen"
)

var (
	typeNames = flag.String("type", "", "comma separated list of type names; required")
	output    = flag.String("output", "", "output file name; defaults to <type>_props.go of the first type")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("forgegen: ")

	flag.Usage = usage
	flag.Parse()

	if *typeNames == "" {
		flag.Usage()
		os.Exit(2)
	}

	names := strings.Split(*typeNames, ",")

	dir := "."
	if args := flag.Args(); len(args) > 0 {
		dir = args[0]
	}

	source, err := codegen.Generate(dir, names)
	if err != nil {
		log.Fatal(err)
	}

	outputName := *output
	if outputName == "" {
		outputName = filepath.Join(dir, strings.ToLower(names[0])+"_props.go")
	}

	if err := os.WriteFile(outputName, source, 0o644); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: forgegen -type T[,T...] [-output file.go] [directory]")
	flag.PrintDefaults()
}
