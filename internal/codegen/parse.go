package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// deferredTag marks a struct field whose construction is deferred: the
// generated props type wraps it in forge.Prop instead of copying it.
//
//	type Camera struct {
//	    Target Transform `forge:"prop"`
//	    Zoom   float64
//	}
const deferredTag = "prop"

// Field is one mirrored field of a generated props type. The field keeps
// the identifier of its source field, so an exported source field yields an
// exported props field and an unexported one stays unexported.
type Field struct {
	Name     string
	Type     string
	Deferred bool
}

// Variant is one member struct of a sum type, in declaration order.
type Variant struct {
	Name   string
	Fields []Field
}

// TypeModel is the analyzed shape of one input type. Exactly one of Fields
// (struct shape) and Variants (sum type shape) is populated.
type TypeModel struct {
	Name     string
	Sum      bool
	Fields   []Field
	Variants []Variant

	// imports needed by mirrored field types, as import spec lines
	imports []string
}

type typeDecl struct {
	spec *ast.TypeSpec
	file *ast.File
}

// Package is the parsed content of one Go package directory.
type Package struct {
	Name string

	fset  *token.FileSet
	types map[string]*typeDecl

	// methods maps a receiver base type name to its method names
	methods map[string]map[string]bool

	// declaration order of all type declarations
	typeOrder []string
}

// Load parses all non-test, non-generated Go files of the package in dir.
func Load(dir string) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		fset:    token.NewFileSet(),
		types:   map[string]*typeDecl{},
		methods: map[string]map[string]bool{},
	}

	var fileNames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		fileNames = append(fileNames, name)
	}

	sort.Strings(fileNames)

	for _, name := range fileNames {
		file, err := parser.ParseFile(pkg.fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}

		if isGenerated(file) {
			// skip our own previous output so regeneration is stable
			continue
		}

		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if pkg.Name != file.Name.Name {
			return nil, fmt.Errorf("multiple packages in %s: %s and %s", dir, pkg.Name, file.Name.Name)
		}

		pkg.indexFile(file)
	}

	if pkg.Name == "" {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}

	return pkg, nil
}

func isGenerated(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.End() >= file.Package {
			break
		}

		if strings.Contains(group.Text(), "Code generated by forgegen") {
			return true
		}
	}

	return false
}

func (p *Package) indexFile(file *ast.File) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}

			for _, spec := range decl.Specs {
				spec := spec.(*ast.TypeSpec)
				p.types[spec.Name.Name] = &typeDecl{spec: spec, file: file}
				p.typeOrder = append(p.typeOrder, spec.Name.Name)
			}

		case *ast.FuncDecl:
			if decl.Recv == nil || len(decl.Recv.List) != 1 {
				continue
			}

			recv := receiverBaseName(decl.Recv.List[0].Type)
			if recv == "" {
				continue
			}

			if p.methods[recv] == nil {
				p.methods[recv] = map[string]bool{}
			}

			p.methods[recv][decl.Name.Name] = true
		}
	}
}

func receiverBaseName(expr ast.Expr) string {
	switch expr := expr.(type) {
	case *ast.Ident:
		return expr.Name

	case *ast.StarExpr:
		return receiverBaseName(expr.X)

	case *ast.IndexExpr:
		return receiverBaseName(expr.X)

	case *ast.IndexListExpr:
		return receiverBaseName(expr.X)
	}

	return ""
}

// ModelOf analyzes the named type. Structs and marker interface sum types
// are supported; every other kind of type is rejected outright.
func (p *Package) ModelOf(name string) (*TypeModel, error) {
	decl, ok := p.types[name]
	if !ok {
		return nil, fmt.Errorf("type %s not found in package %s", name, p.Name)
	}

	if decl.spec.TypeParams != nil {
		return nil, fmt.Errorf("type %s is generic; generic types are not supported", name)
	}

	switch ty := decl.spec.Type.(type) {
	case *ast.StructType:
		return p.structModel(name, ty, decl.file)

	case *ast.InterfaceType:
		return p.sumModel(name, ty)

	default:
		return nil, fmt.Errorf(
			"type %s is declared as %s; only structs and marker interface sum types are supported",
			name, types.ExprString(decl.spec.Type),
		)
	}
}

func (p *Package) structModel(name string, ty *ast.StructType, file *ast.File) (*TypeModel, error) {
	model := &TypeModel{Name: name}

	fields, imports, err := p.fieldsOf(name, ty, file)
	if err != nil {
		return nil, err
	}

	model.Fields = fields
	model.imports = imports
	return model, nil
}

func (p *Package) fieldsOf(name string, ty *ast.StructType, file *ast.File) ([]Field, []string, error) {
	var fields []Field
	var imports []string

	for _, field := range ty.Fields.List {
		deferred := false
		if field.Tag != nil {
			tag, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("bad field tag on %s: %w", name, err)
			}

			deferred = reflect.StructTag(tag).Get("forge") == deferredTag
		}

		typeText := types.ExprString(field.Type)
		imports = append(imports, importsOf(field.Type, file)...)

		if len(field.Names) == 0 {
			// embedded field, addressed by its base type name
			base := receiverBaseName(unqualify(field.Type))
			if base == "" {
				return nil, nil, fmt.Errorf("cannot mirror embedded field %s of %s", typeText, name)
			}

			fields = append(fields, Field{Name: base, Type: typeText, Deferred: deferred})
			continue
		}

		for _, ident := range field.Names {
			fields = append(fields, Field{Name: ident.Name, Type: typeText, Deferred: deferred})
		}
	}

	return fields, dedupe(imports), nil
}

func unqualify(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return unqualify(e.X)

	case *ast.SelectorExpr:
		return e.Sel
	}

	return expr
}

func (p *Package) sumModel(name string, ty *ast.InterfaceType) (*TypeModel, error) {
	marker, err := markerMethodOf(name, ty)
	if err != nil {
		return nil, err
	}

	model := &TypeModel{Name: name, Sum: true}

	// variants are the package's structs carrying the marker method, in
	// declaration order; the first one supplies the default props
	for _, typeName := range p.typeOrder {
		if !p.methods[typeName][marker] {
			continue
		}

		decl := p.types[typeName]
		structType, ok := decl.spec.Type.(*ast.StructType)
		if !ok {
			return nil, fmt.Errorf("variant %s of %s is not a struct", typeName, name)
		}

		fields, imports, err := p.fieldsOf(typeName, structType, decl.file)
		if err != nil {
			return nil, err
		}

		model.Variants = append(model.Variants, Variant{Name: typeName, Fields: fields})
		model.imports = dedupe(append(model.imports, imports...))
	}

	if len(model.Variants) == 0 {
		return nil, fmt.Errorf("sum type %s has no struct variants implementing %s", name, marker)
	}

	return model, nil
}

// markerMethodOf checks that the interface is a closed sum type: only
// unexported niladic methods, no embedded interfaces. The first method is
// the marker looked for on variant structs.
func markerMethodOf(name string, ty *ast.InterfaceType) (string, error) {
	var marker string

	for _, method := range ty.Methods.List {
		fn, ok := method.Type.(*ast.FuncType)
		if !ok || len(method.Names) == 0 {
			return "", fmt.Errorf("sum type %s must not embed other interfaces", name)
		}

		for _, ident := range method.Names {
			if ident.IsExported() {
				return "", fmt.Errorf("sum type %s has exported method %s; only closed marker interfaces are supported", name, ident.Name)
			}

			if fn.Params.NumFields() != 0 || fn.Results.NumFields() != 0 {
				return "", fmt.Errorf("marker method %s of %s must take and return nothing", ident.Name, name)
			}

			if marker == "" {
				marker = ident.Name
			}
		}
	}

	if marker == "" {
		return "", fmt.Errorf("sum type %s has no marker method", name)
	}

	return marker, nil
}

// importsOf collects the import spec lines needed to spell the given type
// expression outside its original file.
func importsOf(expr ast.Expr, file *ast.File) []string {
	var specs []string

	ast.Inspect(expr, func(node ast.Node) bool {
		selector, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		ident, ok := selector.X.(*ast.Ident)
		if !ok {
			return true
		}

		for _, imp := range file.Imports {
			importPath, _ := strconv.Unquote(imp.Path.Value)

			name := packageNameOf(importPath)
			if imp.Name != nil {
				name = imp.Name.Name
			}

			if name == ident.Name {
				if imp.Name != nil {
					specs = append(specs, fmt.Sprintf("%s %q", imp.Name.Name, importPath))
				} else {
					specs = append(specs, strconv.Quote(importPath))
				}
			}
		}

		return true
	})

	return specs
}

// packageNameOf guesses the package name of an import from its path alone:
// the last element, skipping a major version element like ".../v2" and
// stripping a gopkg.in style suffix like "yaml.v3".
func packageNameOf(importPath string) string {
	base := path.Base(importPath)

	if isVersionElement(base) {
		base = path.Base(path.Dir(importPath))
	}

	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}

	return base
}

func isVersionElement(element string) bool {
	if len(element) < 2 || element[0] != 'v' {
		return false
	}

	for _, r := range element[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func dedupe(values []string) []string {
	slices.Sort(values)
	return slices.Compact(values)
}
