package apigen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/internal/testutil/testlog"
	"github.com/danmuck/tlgen/internal/tl/registry"
	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/danmuck/tlgen/internal/tl/schema"
)

const sampleSchema = `
// LAYER 158
boolFalse#bc799737 = Bool;
boolTrue#997275b5 = Bool;

empty = Empty;
user id:long name:string photo:flags.0?Photo bot:flags.1?true tags:flags.2?Vector<string> verified:flags.3?Bool = User;
photo id:long sizes:Vector<Vector<int>> data:bytes access_hash:flags.4?long = Photo;
photoEmpty = Photo;
wide a:int128 b:int256 ratio:double ok:Bool ids:vector<long> users:Vector<User> = Wide;
clash type_id:int encode:flags.0?int = Clash;

---functions---

invokeWithLayer#da9b0d0d {X:Type} layer:int query:!X = X;
users.getUsers id:Vector<long> = Vector<User>;
`

func build(t *testing.T, src string, opts resolve.Options) (*resolve.Schema, *registry.Registry) {
	t.Helper()
	f, err := schema.Parse("api.tl", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := resolve.Resolve(f, opts)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	reg, err := registry.Build(s)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return s, reg
}

func generate(t *testing.T, src string, opts resolve.Options) map[string]gen.File {
	t.Helper()
	s, reg := build(t, src, opts)
	files, err := Generate(s, reg, Options{Package: "tl"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := make(map[string]gen.File, len(files))
	for _, f := range files {
		out[f.Name] = f
	}
	return out
}

func parseFile(t *testing.T, f gen.File) *ast.File {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Content, parser.ParseComments|parser.AllErrors)
	if err != nil {
		t.Fatalf("generated %s does not parse: %v\n%s", f.Name, err, f.Content)
	}
	return file
}

func structFields(t *testing.T, file *ast.File, name string) map[string]string {
	t.Helper()
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Name.Name != name {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				t.Fatalf("expected %s to be a struct", name)
			}
			fields := make(map[string]string)
			for _, f := range st.Fields.List {
				var buf bytes.Buffer
				writeExpr(&buf, f.Type)
				for _, n := range f.Names {
					fields[n.Name] = buf.String()
				}
			}
			return fields
		}
	}
	t.Fatalf("struct %s not found", name)
	return nil
}

func writeExpr(buf *bytes.Buffer, e ast.Expr) {
	switch x := e.(type) {
	case *ast.Ident:
		buf.WriteString(x.Name)
	case *ast.StarExpr:
		buf.WriteByte('*')
		writeExpr(buf, x.X)
	case *ast.ArrayType:
		buf.WriteString("[]")
		writeExpr(buf, x.Elt)
	case *ast.SelectorExpr:
		writeExpr(buf, x.X)
		buf.WriteByte('.')
		buf.WriteString(x.Sel.Name)
	}
}

func methods(file *ast.File, recv string) map[string]bool {
	out := make(map[string]bool)
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil {
			continue
		}
		var buf bytes.Buffer
		writeExpr(&buf, fd.Recv.List[0].Type)
		if buf.String() == "*"+recv {
			out[fd.Name.Name] = true
		}
	}
	return out
}

func TestGenerateFooScenario(t *testing.T) {
	testlog.Start(t)
	files := generate(t, "foo#1a2b3c4d bar:int baz:flags.0?string = Foo;", resolve.Options{TrustDeclaredIDs: true})

	types := files[TypesFile]
	file := parseFile(t, types)
	fields := structFields(t, file, "Foo")
	if len(fields) != 2 || fields["Bar"] != "int32" || fields["Baz"] != "*string" {
		t.Fatalf("unexpected Foo fields: %v", fields)
	}
	src := string(types.Content)
	for _, want := range []string{
		"const FooTypeID uint32 = 0x1a2b3c4d",
		"func NewFoo(bar int32) *Foo {",
		"func (o *Foo) SetBaz(v string) { o.Baz = &v }",
		"flags |= 1 << 0",
		"b.PutUint32(flags)",
		"if flags&(1<<0) != 0 {",
		"foo#1a2b3c4d bar:int flags:# baz:flags.0?string = Foo",
		"if err := b.PutString(*o.Baz); err != nil {",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("expected types file to contain %q:\n%s", want, src)
		}
	}
	// bar, then the injected flag word, then baz.
	bar := strings.Index(src, "b.PutInt(o.Bar)")
	flags := strings.Index(src, "b.PutUint32(flags)")
	baz := strings.Index(src, "b.PutString(*o.Baz)")
	if bar < 0 || flags < bar || baz < flags {
		t.Fatalf("unexpected encode order: bar=%d flags=%d baz=%d", bar, flags, baz)
	}

	registrySrc := string(files[RegistryFile].Content)
	parseFile(t, files[RegistryFile])
	if !strings.Contains(registrySrc, "FooTypeID: func() tlbin.Object { return &Foo{} },") {
		t.Fatalf("expected Foo in registry:\n%s", registrySrc)
	}
	if !strings.Contains(registrySrc, `FooTypeID: "foo#1a2b3c4d",`) {
		t.Fatalf("expected Foo in TypesMap:\n%s", registrySrc)
	}

	classes := string(files[ClassesFile].Content)
	parseFile(t, files[ClassesFile])
	if !strings.Contains(classes, "type FooClass interface {") || !strings.Contains(classes, "case FooTypeID:") {
		t.Fatalf("expected FooClass dispatcher:\n%s", classes)
	}
}

func TestGenerateSampleParses(t *testing.T) {
	testlog.Start(t)
	files := generate(t, sampleSchema, resolve.Options{})
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	for _, f := range files {
		if !bytes.HasPrefix(f.Content, []byte(gen.Header)) {
			t.Fatalf("expected %s to start with the generated header", f.Name)
		}
		parseFile(t, f)
	}

	file := parseFile(t, files[TypesFile])
	user := structFields(t, file, "User")
	want := map[string]string{
		"ID":       "int64",
		"Name":     "string",
		"Photo":    "PhotoClass",
		"Bot":      "bool",
		"Tags":     "[]string",
		"Verified": "*bool",
	}
	for k, v := range want {
		if user[k] != v {
			t.Fatalf("expected User.%s %s, got %q (%v)", k, v, user[k], user)
		}
	}
	photo := structFields(t, file, "Photo")
	if photo["Sizes"] != "[][]int32" || photo["Data"] != "[]byte" || photo["AccessHash"] != "*int64" {
		t.Fatalf("unexpected Photo fields: %v", photo)
	}
	wide := structFields(t, file, "Wide")
	if wide["A"] != "tlbin.Int128" || wide["B"] != "tlbin.Int256" || wide["Users"] != "[]UserClass" || wide["IDs"] != "[]int64" {
		t.Fatalf("unexpected Wide fields: %v", wide)
	}
	invoke := structFields(t, file, "InvokeWithLayerRequest")
	if invoke["Query"] != "tlbin.Object" || invoke["Layer"] != "int32" {
		t.Fatalf("unexpected InvokeWithLayerRequest fields: %v", invoke)
	}
	if _, ok := structFields(t, file, "UsersGetUsersRequest")["ID"]; !ok {
		t.Fatalf("expected UsersGetUsersRequest.ID")
	}

	got := methods(file, "User")
	for _, m := range []string{"TypeID", "TypeName", "Encode", "EncodeBare", "Decode", "DecodeBare", "SetPhoto", "SetBot", "SetTags", "SetVerified", "isUserClass"} {
		if !got[m] {
			t.Fatalf("expected User.%s, got %v", m, got)
		}
	}
	if methods(file, "InvokeWithLayerRequest")["isXClass"] {
		t.Fatalf("functions must not implement a class")
	}
}

func TestGenerateRenamesFieldsThatShadowMethods(t *testing.T) {
	testlog.Start(t)
	files := generate(t, sampleSchema, resolve.Options{})
	file := parseFile(t, files[TypesFile])
	clash := structFields(t, file, "Clash")
	if clash["TypeIDField"] != "int32" || clash["EncodeField"] != "*int32" {
		t.Fatalf("unexpected Clash fields: %v", clash)
	}
	if !methods(file, "Clash")["SetEncode"] {
		t.Fatalf("expected SetEncode setter")
	}
}

func TestGenerateIdempotent(t *testing.T) {
	testlog.Start(t)
	first := generate(t, sampleSchema, resolve.Options{})
	for i := 0; i < 3; i++ {
		again := generate(t, sampleSchema, resolve.Options{})
		for name, f := range first {
			if !bytes.Equal(f.Content, again[name].Content) {
				t.Fatalf("run %d: %s differs between runs", i, name)
			}
		}
	}
}

func TestGenerateRegistryOrderFollowsDeclarations(t *testing.T) {
	testlog.Start(t)
	files := generate(t, sampleSchema, resolve.Options{})
	src := string(files[RegistryFile].Content)
	order := []string{"EmptyTypeID:", "UserTypeID:", "PhotoTypeID:", "PhotoEmptyTypeID:", "WideTypeID:", "InvokeWithLayerRequestTypeID:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(src, key)
		if idx <= last {
			t.Fatalf("expected %s after previous entries in registry", key)
		}
		last = idx
	}
	if !strings.Contains(src, "const Layer = 158") {
		t.Fatalf("expected layer constant:\n%s", src)
	}
}

func TestGenerateNameCollision(t *testing.T) {
	testlog.Start(t)
	s, reg := build(t, "foo_bar = A;\nfooBar = A;", resolve.Options{})
	_, err := Generate(s, reg, Options{})
	var collision *NameCollisionError
	if !errors.As(err, &collision) || collision.Ident != "FooBar" {
		t.Fatalf("expected NameCollisionError for FooBar, got %v", err)
	}
}

// TestGeneratedPackageRoundTrips writes the generated package next to the
// hand-written tests in testdata/roundtrip and runs them with the go command.
func TestGeneratedPackageRoundTrips(t *testing.T) {
	testlog.Start(t)
	if testing.Short() {
		t.Skip("builds a generated package")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}

	src, err := os.ReadFile(filepath.Join("testdata", "roundtrip", "schema.tl"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	tests, err := os.ReadFile(filepath.Join("testdata", "roundtrip", "roundtrip_test.go"))
	if err != nil {
		t.Fatalf("read tests: %v", err)
	}
	s, reg := build(t, string(src), resolve.Options{})
	files, err := Generate(s, reg, Options{Package: "tl"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	files = append(files, gen.File{Name: "roundtrip_test.go", Content: tests})

	// inside the module so the runtime import resolves; testdata keeps it
	// out of ./... patterns
	dir, err := os.MkdirTemp("testdata", "build-")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	if err := gen.Write(dir, files); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := exec.Command("go", "test", "-count=1", ".")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("generated package tests failed: %v\n%s", err, out)
	}
}
