package resolve

import (
	"errors"
	"testing"

	"github.com/danmuck/tlgen/internal/testutil/testlog"
	"github.com/danmuck/tlgen/internal/tl/schema"
)

func parse(t *testing.T, src string) *schema.File {
	t.Helper()
	f, err := schema.Parse("test.tl", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

const telegramSample = `
pong#347773c5 msg_id:long ping_id:long = Pong;
boolFalse#bc799737 = Bool;
boolTrue#997275b5 = Bool;
true#3fedd339 = True;

inputPeerEmpty#7f3b18ea = InputPeer;
inputPeerUser#dde8a54c user_id:long access_hash:long = InputPeer;
updateShortSentMessage#9015e101 flags:# out:flags.1?true id:int pts:int pts_count:int date:int media:flags.9?MessageMedia entities:flags.7?Vector<MessageEntity> ttl_period:flags.25?int = Updates;
messageMediaEmpty = MessageMedia;
messageEntityBold offset:int length:int = MessageEntity;

---functions---

ping#7abe77ec ping_id:long = Pong;
invokeWithLayer#da9b0d0d {X:Type} layer:int query:!X = X;
`

func TestResolveVerifiesRealConstructorIDs(t *testing.T) {
	testlog.Start(t)
	s, err := Resolve(parse(t, telegramSample), Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(s.Combinators) != 8 {
		t.Fatalf("expected 8 combinators (builtins skipped), got %d", len(s.Combinators))
	}
	byName := make(map[string]*Combinator)
	for _, c := range s.Combinators {
		byName[c.FullName()] = c
	}
	if byName["updateShortSentMessage"].ID != 0x9015e101 {
		t.Fatalf("unexpected id: %#x", byName["updateShortSentMessage"].ID)
	}
	if byName["pong"].ID != 0x347773c5 {
		t.Fatalf("unexpected pong id: %#x", byName["pong"].ID)
	}
	bold := byName["messageEntityBold"]
	if bold.Declared {
		t.Fatalf("messageEntityBold id should be derived")
	}
	if got, want := bold.ID, DeriveID(schema.Definition{
		Name:   "messageEntityBold",
		Args:   []schema.Arg{{Name: "offset", Type: schema.TypeRef{Name: "int"}}, {Name: "length", Type: schema.TypeRef{Name: "int"}}},
		Result: schema.TypeRef{Name: "MessageEntity"},
	}); got != want {
		t.Fatalf("derived id unstable: %#x != %#x", got, want)
	}
	invoke := byName["invokeWithLayer"]
	if invoke.Result.Kind != KindObject || invoke.Fields[1].Type.Kind != KindObject {
		t.Fatalf("unexpected generic resolution: %+v", invoke)
	}
	if _, ok := s.Group("Bool"); ok {
		t.Fatalf("Bool must not form a type group")
	}
	peers, ok := s.Group("InputPeer")
	if !ok || len(peers.Constructors) != 2 {
		t.Fatalf("unexpected InputPeer group: %+v", peers)
	}
	if len(s.Functions()) != 2 || len(s.Types()) != 6 {
		t.Fatalf("unexpected split: %d functions %d types", len(s.Functions()), len(s.Types()))
	}
}

func TestResolveScenarioInjectsFlagWord(t *testing.T) {
	testlog.Start(t)
	s, err := Resolve(parse(t, "foo#1a2b3c4d bar:int baz:flags.0?string = Foo;"), Options{TrustDeclaredIDs: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	foo := s.Combinators[0]
	if foo.ID != 0x1a2b3c4d || !foo.Declared {
		t.Fatalf("unexpected id: %#x", foo.ID)
	}
	if len(foo.Fields) != 3 {
		t.Fatalf("expected bar, flags, baz; got %+v", foo.Fields)
	}
	bar, flags, baz := foo.Fields[0], foo.Fields[1], foo.Fields[2]
	if bar.Name != "bar" || bar.Type.Kind != KindPrimitive || bar.Type.Primitive != PrimInt || bar.Optional {
		t.Fatalf("unexpected bar: %+v", bar)
	}
	if !flags.IsFlags() || !flags.Implicit || flags.Name != "flags" {
		t.Fatalf("unexpected flag word: %+v", flags)
	}
	if !baz.Optional || baz.Bit != 0 || baz.Type.Primitive != PrimString {
		t.Fatalf("unexpected baz: %+v", baz)
	}
	if foo.FlagIndex() != 1 {
		t.Fatalf("expected flag word at index 1, got %d", foo.FlagIndex())
	}
}

func TestResolveIDMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	_, err := Resolve(parse(t, "foo#1a2b3c4d bar:int baz:flags.0?string = Foo;"), Options{})
	var mismatch *IDMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected IDMismatchError, got %v", err)
	}
	if mismatch.Declared != 0x1a2b3c4d || mismatch.Derived != 0xe45b3798 {
		t.Fatalf("unexpected mismatch: %+v", mismatch)
	}
}

func TestImplicitAndExplicitFlagWordShareID(t *testing.T) {
	testlog.Start(t)
	implicit, err := Resolve(parse(t, "foo bar:int baz:flags.0?string = Foo;"), Options{})
	if err != nil {
		t.Fatalf("resolve implicit: %v", err)
	}
	explicit, err := Resolve(parse(t, "foo bar:int flags:# baz:flags.0?string = Foo;"), Options{})
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if implicit.Combinators[0].ID != explicit.Combinators[0].ID {
		t.Fatalf("ids differ: %#x vs %#x", implicit.Combinators[0].ID, explicit.Combinators[0].ID)
	}
}

func TestResolveUnresolvedFieldType(t *testing.T) {
	testlog.Start(t)
	_, err := Resolve(parse(t, "user id:long photo:UserPhoto = User;"), Options{})
	var unresolved *UnresolvedTypeError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedTypeError, got %v", err)
	}
	if unresolved.Combinator != "user" || unresolved.Field != "photo" || unresolved.TypeName != "UserPhoto" {
		t.Fatalf("unexpected error fields: %+v", unresolved)
	}
}

func TestResolveUnresolvedVectorElement(t *testing.T) {
	testlog.Start(t)
	_, err := Resolve(parse(t, "chat users:Vector<User> = Chat;"), Options{})
	var unresolved *UnresolvedTypeError
	if !errors.As(err, &unresolved) || unresolved.Field != "users" {
		t.Fatalf("expected UnresolvedTypeError for users, got %v", err)
	}
}

func TestResolveUnresolvedFunctionResult(t *testing.T) {
	testlog.Start(t)
	_, err := Resolve(parse(t, "---functions---\nhelp.getConfig = Config;"), Options{})
	var unresolved *UnresolvedTypeError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedTypeError, got %v", err)
	}
	if unresolved.Field != "" || unresolved.TypeName != "Config" {
		t.Fatalf("unexpected error fields: %+v", unresolved)
	}
}

func TestResolveFlagErrors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		src   string
		field string
	}{
		{"second flag word", "foo flags:# flags2:# a:flags.0?int = Foo;", "flags2"},
		{"bit out of range", "foo a:flags.32?int = Foo;", "a"},
		{"unknown flag word", "foo flags:# a:other.1?int = Foo;", "a"},
		{"optional before flag word", "foo a:flags.0?int flags:# = Foo;", "a"},
		{"required true", "foo a:true = Foo;", "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(parse(t, tc.src), Options{})
			var flagErr *FlagError
			if !errors.As(err, &flagErr) {
				t.Fatalf("expected FlagError, got %v", err)
			}
			if flagErr.Field != tc.field {
				t.Fatalf("unexpected field: %+v", flagErr)
			}
		})
	}
}

func TestResolveDuplicateName(t *testing.T) {
	testlog.Start(t)
	_, err := Resolve(parse(t, "foo = Foo;\nfoo a:int = Foo;"), Options{})
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Name != "foo" || dup.SecondLine != 2 {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	testlog.Start(t)
	a, err := Resolve(parse(t, telegramSample), Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := Resolve(parse(t, telegramSample), Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := range a.Combinators {
		if a.Combinators[i].ID != b.Combinators[i].ID || a.Combinators[i].Canonical != b.Combinators[i].Canonical {
			t.Fatalf("combinator %d differs between runs", i)
		}
	}
}
