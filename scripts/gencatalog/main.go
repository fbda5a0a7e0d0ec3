// Package main generates the node-type catalog of pkg/ast.
//
// It loads the package with golang.org/x/tools/go/packages, collects every
// struct type whose pointer implements ast.Node and writes them, sorted by
// name, as a []reflect.Type literal.
//
// Usage:
//
//	go run ./scripts/gencatalog -pkg ./pkg/ast -out pkg/ast/catalog_gen.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"go/types"
	"log"
	"os"
	"sort"

	"golang.org/x/tools/go/packages"
)

var (
	pkgFlag  = flag.String("pkg", "./pkg/ast", "package pattern to scan")
	outFlag  = flag.String("out", "", "output file path (required)")
	ifaceArg = flag.String("iface", "Node", "interface every catalog entry implements")
	baseArg  = flag.String("base", "NodeInfo", "embedded base type to exclude")
)

func main() {
	flag.Parse()

	if *outFlag == "" {
		log.Fatal("--out flag is required")
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, *pkgFlag)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *pkgFlag, err)
	}
	if len(pkgs) != 1 {
		log.Fatalf("expected one package for %s, got %d", *pkgFlag, len(pkgs))
	}
	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal("package has errors")
	}

	names, err := collect(pkgs[0].Types, *ifaceArg, *baseArg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Found %d node types in %s", len(names), pkgs[0].PkgPath)

	src, err := generate(pkgs[0].Name, names)
	if err != nil {
		log.Fatalf("failed to format output: %v", err)
	}

	if err := os.WriteFile(*outFlag, src, 0o600); err != nil {
		log.Fatalf("failed to write %s: %v", *outFlag, err)
	}
	log.Printf("Wrote %s", *outFlag)
}

func collect(pkg *types.Package, ifaceName, base string) ([]string, error) {
	scope := pkg.Scope()
	obj := scope.Lookup(ifaceName)
	if obj == nil {
		return nil, fmt.Errorf("interface %s not found in %s", ifaceName, pkg.Path())
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("%s is not an interface", ifaceName)
	}

	var names []string
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || name == base || !tn.Exported() {
			continue
		}
		if _, isStruct := tn.Type().Underlying().(*types.Struct); !isStruct {
			continue
		}
		if types.Implements(types.NewPointer(tn.Type()), iface) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func generate(pkgName string, names []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by gencatalog; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)
	buf.WriteString("import \"reflect\"\n\n")
	buf.WriteString("var nodeTypes = []reflect.Type{\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "\treflect.TypeFor[*%s](),\n", name)
	}
	buf.WriteString("}\n")
	return format.Source(buf.Bytes())
}
