package value

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func TestEncodeLiterals(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{String("hello"), "hello"},
		{String(""), ""},
		{Int(5), "5"},
		{Int(-42), "-42"},
		{Float(1), "1.0"},
		{Float(0.1), "0.1"},
		{Float(1e16), "1e+16"},
		{Float(1.5e-05), "1.5e-05"},
		{Float(123456789), "123456789.0"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{None(), "None"},
		{List(Int(1), Int(2), String("a")), "[1, 2, 'a']"},
		{List(), "[]"},
		{Map(Pair{String("k"), String("v")}, Pair{String("n"), Int(1)}), "{'k': 'v', 'n': 1}"},
		{List(String("it's")), `["it's"]`},
		{List(String("a\nb\\")), `['a\nb\\']`},
	}
	for _, tc := range cases {
		if got := Encode(tc.v); got != tc.want {
			t.Fatalf("Encode(%#v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestDecodeLiterals(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"5", Int(5)},
		{" -7 ", Int(-7)},
		{"1_000", Int(1000)},
		{"0x1f", Int(31)},
		{"0b101", Int(5)},
		{"1.5", Float(1.5)},
		{".5", Float(0.5)},
		{"1e3", Float(1000)},
		{"True", Bool(true)},
		{"False", Bool(false)},
		{"None", None()},
		{"'quoted'", String("quoted")},
		{`"a" 'b'`, String("ab")},
		{`'\x41\n'`, String("A\n")},
		{`r'\d+'`, String(`\d+`)},
		{"[1, 'a', [True]]", List(Int(1), String("a"), List(Bool(true)))},
		{"(1, 2)", List(Int(1), Int(2))},
		{"(1,)", List(Int(1))},
		{"(1)", Int(1)},
		{"1, 2", List(Int(1), Int(2))},
		{"{1, 2, 2}", List(Int(1), Int(2))},
		{"{}", Map()},
		{"{'a': 1, 'b': [2],}", Map(Pair{String("a"), Int(1)}, Pair{String("b"), List(Int(2))})},
	}
	for _, tc := range cases {
		if got := Decode(tc.in); !got.Equal(tc.want) {
			t.Fatalf("Decode(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeFallsBackToRawString(t *testing.T) {
	for _, in := range []string{
		"hello",
		"https://example.com/a?b=c",
		"free text, with commas",
		"007",
		"1_",
		"[1, 2",
		"{'a': 1",
		"{[1]: 2}",
		"b'bytes'",
		"1j",
		"--5",
		"99999999999999999999999",
		"'unterminated",
		"true",
	} {
		got := Decode(in)
		if got.Kind() != KindString || got.Str() != in {
			t.Fatalf("Decode(%q) = %#v, want raw string", in, got)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	got := Decode("")
	if got.Kind() != KindString || got.Str() != "" {
		t.Fatalf("Decode(\"\") = %#v, want empty string", got)
	}
}

func TestDecodeOverflowFloatIsInf(t *testing.T) {
	got := Decode("1e999")
	if got.Kind() != KindFloat || !math.IsInf(got.Float(), 1) {
		t.Fatalf("Decode(1e999) = %#v", got)
	}
}

func TestInfinityRoundTrip(t *testing.T) {
	inf := math.Inf(1)
	for _, v := range []Value{
		Float(inf),
		Float(-inf),
		List(Int(1), Float(inf), Float(-inf)),
		StringMap(map[string]Value{"max": Float(inf)}),
	} {
		enc := Encode(v)
		if got := Decode(enc); !got.Equal(v) {
			t.Fatalf("round trip %q: got %#v want %#v", enc, got, v)
		}
	}
	if got := Encode(List(Float(inf), Float(-inf))); got != "[1e999, -1e999]" {
		t.Fatalf("Encode = %q", got)
	}
}

func TestCanonicalIsStable(t *testing.T) {
	for _, tc := range []struct {
		in, want Value
	}{
		{Int(5), Int(5)},
		{String("5"), Int(5)},
		{String("'5'"), Int(5)},
		{String(`"'None'"`), None()},
		{Float(math.NaN()), String("nan")},
		{List(Float(math.NaN())), String("[nan]")},
		{String("plain text"), String("plain text")},
	} {
		got := Canonical(tc.in)
		if !got.Equal(tc.want) {
			t.Fatalf("Canonical(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
		if again := Decode(Encode(got)); !again.Equal(got) {
			t.Fatalf("Canonical(%#v) not stable: %#v", tc.in, again)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	gofakeit.Seed(42)
	for i := 0; i < 200; i++ {
		vs := []Value{
			Int(gofakeit.Int64()),
			Float(gofakeit.Float64Range(-1e20, 1e20)),
			Float(gofakeit.Float64Range(-1, 1)),
			Bool(gofakeit.Bool()),
			String(gofakeit.URL()),
			String(gofakeit.Sentence(6)),
			List(String(gofakeit.Word()), Int(int64(gofakeit.Number(-100, 100))), String(gofakeit.Phrase()+"'\"\\\t")),
			StringMap(map[string]Value{
				gofakeit.Username(): String(gofakeit.Email()),
				"count":             Int(int64(gofakeit.Number(0, 1000))),
				"on":                Bool(gofakeit.Bool()),
				"ratio":             Float(gofakeit.Float64()),
			}),
		}
		for _, v := range vs {
			enc := Encode(v)
			if got := Decode(enc); !got.Equal(v) {
				t.Fatalf("round trip %q: got %#v want %#v", enc, got, v)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	if !Normalize(String("5")).Equal(Int(5)) {
		t.Fatal(`Normalize("5") should be Int(5)`)
	}
	if !Normalize(Int(5)).Equal(Int(5)) {
		t.Fatal("Normalize(Int(5)) should be unchanged")
	}
	if !Normalize(String("[1, 2]")).Equal(List(Int(1), Int(2))) {
		t.Fatal("Normalize should decode list literals")
	}
	if got := Normalize(String("plain")); got.Str() != "plain" {
		t.Fatalf("Normalize(plain) = %#v", got)
	}
}

func TestOfAndInterface(t *testing.T) {
	v, err := Of(map[string]any{"b": []any{1, "x", true, nil}, "a": 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if got := Encode(v); got != "{'a': 2.5, 'b': [1, 'x', True, None]}" {
		t.Fatalf("Encode(Of(...)) = %q", got)
	}
	m, ok := v.Interface().(map[string]any)
	if !ok || m["a"] != 2.5 {
		t.Fatalf("Interface() = %#v", v.Interface())
	}
	if _, err := Of(struct{}{}); err == nil {
		t.Fatal("Of(struct{}) should fail")
	}
	if _, err := Of(uint64(math.MaxUint64)); err == nil {
		t.Fatal("Of(MaxUint64) should overflow")
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []Value{None(), Int(0), Float(0), Bool(false), String(""), List(), Map()} {
		if v.Truthy() {
			t.Fatalf("%#v should be falsy", v)
		}
	}
	for _, v := range []Value{Int(1), String("x"), List(None())} {
		if !v.Truthy() {
			t.Fatalf("%#v should be truthy", v)
		}
	}
}
