package romaji

import (
	"testing"

	"pgregory.net/rapid"
)

func TestIsPhoneticLatin(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Yoasobi", true},
		{"XG", true},
		{"Hello World", true},
		{"ヨアソビ", false},
		{"夜に駆ける", false},
		{"Yoru ni 駆ける", false},
		{"ｱｲﾐｮﾝ", false},
		{"123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsPhoneticLatin(tt.input); got != tt.want {
				t.Errorf("IsPhoneticLatin(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"sakura", "さくら", true},
		{"Yoasobi", "よあそび", true},
		{"kitto", "きっと", true},
		{"matcha", "まっちゃ", true},
		{"konnichiwa", "こんにちわ", true},
		{"shin'ya", "しんや", true},
		{"Tōkyō", "とうきょう", true},
		{"yoru ni kakeru", "よる に かける", true},
		{"ramen", "らめん", true},
		{"XG", "xg", false},
		{"Aimer", "あいめr", false},
		{"", "", false},
		{"123", "123", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ToHiragana(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ToHiragana(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestToKatakana(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Yoasobi", "ヨアソビ"},
		{"kitto", "キット"},
		{"konnichiwa", "コンニチワ"},
		{"vu", "ヴ"},
		{"ra-men", "ラーメン"},
		{"hon", "ホン"},
		{"honn", "ホン"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ToKatakana(tt.input)
			if !ok || got != tt.want {
				t.Errorf("ToKatakana(%q) = (%q, %v), want (%q, true)", tt.input, got, ok, tt.want)
			}
		})
	}
}

func TestFieldVariants(t *testing.T) {
	t.Run("phonetic latin", func(t *testing.T) {
		got := FieldVariants("Yoasobi")
		want := []Rendering{
			{ScriptOriginal, "Yoasobi"},
			{ScriptHiragana, "よあそび"},
			{ScriptKatakana, "ヨアソビ"},
		}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("variant[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	for _, input := range []string{"XG", "夜に駆ける", "", "   "} {
		t.Run("original only "+input, func(t *testing.T) {
			got := FieldVariants(input)
			if len(got) != 1 || got[0].Script != ScriptOriginal || got[0].Text != input {
				t.Errorf("FieldVariants(%q) = %+v, want original only", input, got)
			}
		})
	}
}

func TestGenerateVariants(t *testing.T) {
	got := GenerateVariants(Fields{Artist: "Yoasobi", Title: "Yoru ni Kakeru"})

	if len(got) != 9 {
		t.Fatalf("len = %d, want 9", len(got))
	}
	if got[0].Method != MethodOriginal || got[0].Artist != "Yoasobi" || got[0].Title != "Yoru ni Kakeru" {
		t.Errorf("first variant = %+v, want unmodified original", got[0])
	}

	methods := map[string]Fields{}
	for _, v := range got {
		if _, dup := methods[v.Method]; dup {
			t.Errorf("duplicate method %q", v.Method)
		}
		methods[v.Method] = v.Fields
	}

	f, ok := methods["artist:katakana,title:hiragana"]
	if !ok {
		t.Fatal("missing artist:katakana,title:hiragana variant")
	}
	if f.Artist != "ヨアソビ" || f.Title != "よる に かける" || f.Album != "" {
		t.Errorf("artist:katakana,title:hiragana = %+v", f)
	}
}

func TestGenerateVariants_NoPhoneticFields(t *testing.T) {
	got := GenerateVariants(Fields{Artist: "XG", Album: "AWE", Title: "Woke Up"})
	if len(got) != 1 || got[0].Method != MethodOriginal {
		t.Errorf("GenerateVariants = %+v, want single original", got)
	}
}

func TestKatakanaShift_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "s")
		hira, hok := ToHiragana(s)
		kata, kok := ToKatakana(s)
		if hok != kok {
			t.Fatalf("ok mismatch for %q", s)
		}
		if len([]rune(hira)) != len([]rune(kata)) {
			t.Fatalf("length mismatch %q vs %q", hira, kata)
		}
		if IsPhoneticLatin(kata) && hok {
			t.Fatalf("converted text %q still phonetic latin", kata)
		}
	})
}
