package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Generate loads the package in dir and emits the generated props types and
// construct registrations for the named types, gofmt formatted and ready to
// be written next to the sources.
func Generate(dir string, typeNames []string) ([]byte, error) {
	pkg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	models := make([]*TypeModel, 0, len(typeNames))
	for _, name := range typeNames {
		model, err := pkg.ModelOf(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}

		models = append(models, model)
	}

	return Emit(pkg.Name, models)
}

// Emit renders the generated source file for the given models.
func Emit(pkgName string, models []*TypeModel) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "// Code generated by forgegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)

	var needFmt bool
	var extraImports []string
	for _, model := range models {
		needFmt = needFmt || model.Sum
		extraImports = append(extraImports, model.imports...)
	}

	buf.WriteString("import (\n")
	if needFmt {
		buf.WriteString("\t\"fmt\"\n\n")
	}
	buf.WriteString("\t\"github.com/forgecs/forge\"\n")
	buf.WriteString("\t\"github.com/forgecs/forge/world\"\n")
	for _, spec := range dedupe(extraImports) {
		fmt.Fprintf(&buf, "\t%s\n", spec)
	}
	buf.WriteString(")\n\n")

	for _, model := range models {
		if model.Sum {
			emitSum(&buf, model)
		} else {
			emitStruct(&buf, model)
		}
	}

	source, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated source does not parse: %w", err)
	}

	return source, nil
}

func emitStruct(buf *bytes.Buffer, model *TypeModel) {
	emitPropsStruct(buf, model.Name, model.Name+"Props", model.Fields)

	fmt.Fprintf(buf, "var _ = forge.Register(\n")
	fmt.Fprintf(buf, "\tfunc() %sProps { return %sProps{} },\n", model.Name, model.Name)
	fmt.Fprintf(buf, "\tfunc(entity *world.EntityWorldMut, props %sProps) (%s, error) {\n", model.Name, model.Name)

	failure := fmt.Sprintf("%s{}", model.Name)
	emitFieldResolution(buf, "\t\t", model.Name, model.Fields, failure, "props.")

	fmt.Fprintf(buf, "\t},\n)\n\n")
}

func emitSum(buf *bytes.Buffer, model *TypeModel) {
	marker := fmt.Sprintf("is%sProps", model.Name)

	fmt.Fprintf(buf, "// %sProps is the generated props type of %s. One props variant mirrors\n", model.Name, model.Name)
	fmt.Fprintf(buf, "// each variant of %s; the default is the first declared variant with all\n", model.Name)
	fmt.Fprintf(buf, "// of its fields at their defaults.\n")
	fmt.Fprintf(buf, "type %sProps interface {\n\t%s()\n}\n\n", model.Name, marker)

	for _, variant := range model.Variants {
		emitPropsStruct(buf, variant.Name, variant.Name+"Props", variant.Fields)
		fmt.Fprintf(buf, "func (%sProps) %s() {}\n\n", variant.Name, marker)
	}

	first := model.Variants[0]

	fmt.Fprintf(buf, "var _ = forge.Register(\n")
	fmt.Fprintf(buf, "\tfunc() %sProps { return %sProps{} },\n", model.Name, first.Name)
	fmt.Fprintf(buf, "\tfunc(entity *world.EntityWorldMut, props %sProps) (%s, error) {\n", model.Name, model.Name)
	fmt.Fprintf(buf, "\t\tswitch props := props.(type) {\n")

	for _, variant := range model.Variants {
		fmt.Fprintf(buf, "\t\tcase %sProps:\n", variant.Name)
		emitFieldResolution(buf, "\t\t\t", variant.Name, variant.Fields, "nil", "props.")
	}

	fmt.Fprintf(buf, "\t\tdefault:\n")
	fmt.Fprintf(buf, "\t\t\tpanic(fmt.Sprintf(\"unexpected props variant %%T\", props))\n")
	fmt.Fprintf(buf, "\t\t}\n\t},\n)\n\n")
}

func emitPropsStruct(buf *bytes.Buffer, source, propsName string, fields []Field) {
	fmt.Fprintf(buf, "// %s is the generated props type of %s.\n", propsName, source)

	if len(fields) == 0 {
		fmt.Fprintf(buf, "type %s struct{}\n\n", propsName)
		return
	}

	fmt.Fprintf(buf, "type %s struct {\n", propsName)
	for _, field := range fields {
		if field.Deferred {
			fmt.Fprintf(buf, "\t%s forge.Prop[%s]\n", field.Name, field.Type)
		} else {
			fmt.Fprintf(buf, "\t%s %s\n", field.Name, field.Type)
		}
	}
	fmt.Fprintf(buf, "}\n\n")
}

// emitFieldResolution writes the body turning props fields into the final
// instance: deferred fields resolve in declaration order, so the first
// failing field decides the reported error; direct fields copy through.
func emitFieldResolution(buf *bytes.Buffer, indent, typeName string, fields []Field, failure, access string) {
	locals := localNames(fields)

	for idx, field := range fields {
		if !field.Deferred {
			continue
		}

		fmt.Fprintf(buf, "%s%s, err := %s%s.Resolve(entity)\n", indent, locals[idx], access, field.Name)
		fmt.Fprintf(buf, "%sif err != nil {\n", indent)
		fmt.Fprintf(buf, "%s\treturn %s, err\n", indent, failure)
		fmt.Fprintf(buf, "%s}\n", indent)
	}

	if len(fields) == 0 {
		fmt.Fprintf(buf, "%sreturn %s{}, nil\n", indent, typeName)
		return
	}

	fmt.Fprintf(buf, "%sreturn %s{\n", indent, typeName)
	for idx, field := range fields {
		if field.Deferred {
			fmt.Fprintf(buf, "%s\t%s: %s,\n", indent, field.Name, locals[idx])
		} else {
			fmt.Fprintf(buf, "%s\t%s: %s%s,\n", indent, field.Name, access, field.Name)
		}
	}
	fmt.Fprintf(buf, "%s}, nil\n", indent)
}

// localNames picks collision free local variable names for the resolved
// values of deferred fields.
func localNames(fields []Field) []string {
	used := map[string]bool{"entity": true, "props": true, "err": true}

	names := make([]string, len(fields))
	for idx, field := range fields {
		if !field.Deferred {
			continue
		}

		name := lowerFirst(field.Name)
		for used[name] || token.IsKeyword(name) {
			name += "Value"
		}

		used[name] = true
		names[idx] = name
	}

	return names
}

func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}
