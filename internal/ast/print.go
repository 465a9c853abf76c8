package ast

import (
	"fmt"
	"strings"
)

// Print renders a CompilationUnit back to Flylang source text. It is
// used by the parse→print→parse round-trip property: for any
// syntactically valid program, parsing, printing, and re-parsing must
// yield a structurally equal AST (modulo span).
func Print(cu *CompilationUnit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", cu.ModulePath)
	for _, u := range cu.Uses {
		b.WriteString(u.String())
		b.WriteByte('\n')
	}
	for _, d := range cu.Decls {
		printDecl(&b, d, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

func indent(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteString("    ")
	}
}

func visPrefix(v Visibility) string {
	if v == Public {
		return "pub "
	}
	return ""
}

func printTypeParams(tps []*TypeParamDecl) string {
	if len(tps) == 0 {
		return ""
	}
	parts := make([]string, len(tps))
	for i, tp := range tps {
		if len(tp.Bounds) == 0 {
			parts[i] = tp.Name
			continue
		}
		bs := make([]string, len(tp.Bounds))
		for j, bnd := range tp.Bounds {
			bs[j] = bnd.String()
		}
		parts[i] = fmt.Sprintf("%s: %s", tp.Name, strings.Join(bs, " + "))
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func printFields(b *strings.Builder, fields []*FieldDecl, depth int) {
	for _, f := range fields {
		indent(b, depth)
		mut := ""
		if f.Mutable {
			mut = "mut "
		}
		fmt.Fprintf(b, "%s%s%s: %s", visPrefix(f.Visibility), mut, f.Name, f.Type)
		if f.Default != nil {
			fmt.Fprintf(b, " = %s", f.Default)
		}
		b.WriteString("\n")
	}
}

func printFunc(b *strings.Builder, f *FunctionDecl, depth int) {
	indent(b, depth)
	if f.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString(visPrefix(f.Visibility))
	b.WriteString("fn ")
	b.WriteString(f.Name)
	b.WriteString(printTypeParams(f.TypeParams))
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	if f.ReturnType != nil {
		fmt.Fprintf(b, " -> %s", f.ReturnType)
	}
	if len(f.Effects) > 0 {
		fmt.Fprintf(b, " ! {%s}", strings.Join(f.Effects, ", "))
	}
	if f.Requires != nil {
		fmt.Fprintf(b, " requires %s", f.Requires)
	}
	if f.Body != nil {
		fmt.Fprintf(b, " %s", f.Body)
	}
	b.WriteString("\n")
}

func printDecl(b *strings.Builder, d TopDecl, depth int) {
	indent(b, depth)
	switch decl := d.(type) {
	case *ClassDecl:
		fmt.Fprintf(b, "%sclass %s%s", visPrefix(decl.Visibility), decl.Name, printTypeParams(decl.TypeParams))
		if decl.Superclass != nil || len(decl.Interfaces) > 0 {
			parts := []string{}
			if decl.Superclass != nil {
				parts = append(parts, decl.Superclass.String())
			}
			for _, i := range decl.Interfaces {
				parts = append(parts, i.String())
			}
			fmt.Fprintf(b, "(%s)", strings.Join(parts, ", "))
		}
		b.WriteString(" {\n")
		printFields(b, decl.Fields, depth+1)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		for _, n := range decl.Nested {
			printDecl(b, n, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *InterfaceDecl:
		fmt.Fprintf(b, "%sinterface %s%s {\n", visPrefix(decl.Visibility), decl.Name, printTypeParams(decl.TypeParams))
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *EnumDecl:
		fmt.Fprintf(b, "%senum %s {\n", visPrefix(decl.Visibility), decl.Name)
		for _, c := range decl.Cases {
			indent(b, depth+1)
			if len(c.Fields) == 0 {
				fmt.Fprintf(b, "%s,\n", c.Name)
			} else {
				ts := make([]string, len(c.Fields))
				for i, t := range c.Fields {
					ts[i] = t.String()
				}
				fmt.Fprintf(b, "%s(%s),\n", c.Name, strings.Join(ts, ", "))
			}
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *DataDecl:
		fmt.Fprintf(b, "%sdata %s {\n", visPrefix(decl.Visibility), decl.Name)
		for _, v := range decl.Variants {
			indent(b, depth+1)
			b.WriteString(v.Name)
			if len(v.Fields) > 0 {
				b.WriteString(" {\n")
				printFields(b, v.Fields, depth+2)
				indent(b, depth+1)
				b.WriteString("}")
			}
			b.WriteString(",\n")
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *StructDecl:
		fmt.Fprintf(b, "%sstruct %s%s {\n", visPrefix(decl.Visibility), decl.Name, printTypeParams(decl.TypeParams))
		printFields(b, decl.Fields, depth+1)
		indent(b, depth)
		b.WriteString("}\n")
	case *SparkDecl:
		fmt.Fprintf(b, "%sspark %s {\n", visPrefix(decl.Visibility), decl.Name)
		printFields(b, decl.Fields, depth+1)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *TraitDecl:
		fmt.Fprintf(b, "%strait %s {\n", visPrefix(decl.Visibility), decl.Name)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ProtocolDecl:
		fmt.Fprintf(b, "%sprotocol %s {\n", visPrefix(decl.Visibility), decl.Name)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ImplDecl:
		if decl.Trait != nil {
			fmt.Fprintf(b, "impl %s for %s {\n", decl.Trait, decl.Target)
		} else {
			fmt.Fprintf(b, "impl %s {\n", decl.Target)
		}
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *TypeAliasDecl:
		fmt.Fprintf(b, "type %s = %s\n", decl.Name, decl.Target)
	case *ExtendDecl:
		fmt.Fprintf(b, "extend %s {\n", decl.Target)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ContextDecl:
		fmt.Fprintf(b, "context %s {\n", decl.Name)
		printFields(b, decl.Fields, depth+1)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *SupervisorDecl:
		fmt.Fprintf(b, "supervisor %s {\n", decl.Name)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *FlowDecl:
		fmt.Fprintf(b, "flow %s {\n", decl.Name)
		for _, m := range decl.Methods {
			printFunc(b, m, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *MacroDecl:
		parts := make([]string, len(decl.Params))
		for i, p := range decl.Params {
			parts[i] = p.String()
		}
		fmt.Fprintf(b, "macro %s(%s) %s\n", decl.Name, strings.Join(parts, ", "), decl.Body)
	case *ExceptionDecl:
		fmt.Fprintf(b, "exception %s", decl.Name)
		if decl.Superclass != nil {
			fmt.Fprintf(b, "(%s)", decl.Superclass)
		}
		b.WriteString(" {\n")
		printFields(b, decl.Fields, depth+1)
		indent(b, depth)
		b.WriteString("}\n")
	case *FunctionDecl:
		printFunc(b, decl, 0)
	default:
		fmt.Fprintf(b, "%s\n", d)
	}
}
