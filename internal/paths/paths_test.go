package paths

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"Framework/Init.xaml":      "Framework/Init.xaml",
		`Framework\Init.xaml`:      "Framework/Init.xaml",
		`a\b\c.xaml`:               "a/b/c.xaml",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeWorkflowID(t *testing.T) {
	cases := map[string]string{
		`Framework\Init.xaml`: "Framework/Init",
		"Framework/Init.xaml": "Framework/Init",
		"Framework/Init.XAML": "Framework/Init",
		"Main":                "Main",
		"":                    "",
	}
	for in, want := range cases {
		if got := NormalizeWorkflowID(in); got != want {
			t.Errorf("NormalizeWorkflowID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeWorkflowID_CrossConventionEquality(t *testing.T) {
	a := NormalizeWorkflowID(`Framework\Init.xaml`)
	b := NormalizeWorkflowID("Framework/Init.xaml")
	if a != b {
		t.Errorf("expected cross-slash-convention equality, got %q vs %q", a, b)
	}
}
