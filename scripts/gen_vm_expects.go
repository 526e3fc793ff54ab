// gen_vm_expects writes, for every vmTestCase.expectXxx method declared in a
// test file, a function expectVMXxx returning a vmTestCase wrapper, for use
// with vmTestCase.apply.
//
// Usage: go run scripts/gen_vm_expects.go -- vm_test.go vm_expects_test.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

const (
	receiverType = "vmTestCase"
	methodPrefix = "expect"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		log.Fatalf("usage: gen_vm_expects SOURCE [DEST]")
	}
	srcName := args[0]
	dest := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			log.Fatalf("failed to create %v: %v", args[1], err)
		}
		dest = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := generate(ctx, srcName, args, dest); err != nil {
		log.Fatalln(err)
	}
	if err := dest.Close(); err != nil {
		log.Fatalln(err)
	}
}

// generate runs two stages joined by a pipe: one writes raw wrapper source,
// the other gofmts it into dest.
func generate(ctx context.Context, srcName string, args []string, dest io.Writer) error {
	eg, ctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	eg.Go(func() (rerr error) {
		defer func() { pw.CloseWithError(rerr) }()
		return writeWrappers(ctx, pw, srcName, args)
	})

	eg.Go(func() error {
		src, err := ioutil.ReadAll(pr)
		if err != nil {
			return err
		}
		out, err := format.Source(src)
		if err != nil {
			return fmt.Errorf("gofmt failed: %w\n%s", err, src)
		}
		_, err = dest.Write(out)
		return err
	})

	return eg.Wait()
}

func writeWrappers(ctx context.Context, w io.Writer, srcName string, args []string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, srcName, nil, 0)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %v\n\n", file.Name.Name)
	fmt.Fprintf(&buf, "// @generated from %v\n\n", srcName)
	fmt.Fprintf(&buf, "//go:generate go run scripts/gen_vm_expects.go -- %v\n\n", strings.Join(args, " "))

	for _, decl := range file.Decls {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isExpectMethod(fn) {
			continue
		}
		what := strings.TrimPrefix(fn.Name.Name, methodPrefix)

		var params, names []string
		for _, field := range fn.Type.Params.List {
			typ := exprString(fset, field.Type)
			for _, name := range field.Names {
				params = append(params, name.Name+" "+typ)
				if strings.HasPrefix(typ, "...") {
					names = append(names, name.Name+"...")
				} else {
					names = append(names, name.Name)
				}
			}
		}

		fmt.Fprintf(&buf, "func %vVM%v(%v) func(%v) %v {\n",
			methodPrefix, what, strings.Join(params, ", "), receiverType, receiverType)
		fmt.Fprintf(&buf, "return func(vmt %v) %v {\n", receiverType, receiverType)
		fmt.Fprintf(&buf, "return vmt.%v(%v)\n", fn.Name.Name, strings.Join(names, ", "))
		fmt.Fprintf(&buf, "}\n}\n\n")
	}

	_, err = buf.WriteTo(w)
	return err
}

// isExpectMethod matches methods like
// func (vmt vmTestCase) expectFoo(args...) vmTestCase, with at least one
// argument.
func isExpectMethod(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return false
	}
	if recv, ok := fn.Recv.List[0].Type.(*ast.Ident); !ok || recv.Name != receiverType {
		return false
	}
	if !strings.HasPrefix(fn.Name.Name, methodPrefix) || fn.Name.Name == methodPrefix {
		return false
	}
	if fn.Type.Params == nil || len(fn.Type.Params.List) == 0 {
		return false
	}
	results := fn.Type.Results
	if results == nil || len(results.List) != 1 {
		return false
	}
	res, ok := results.List[0].Type.(*ast.Ident)
	return ok && res.Name == receiverType
}

func exprString(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	printer.Fprint(&buf, fset, expr)
	return buf.String()
}
