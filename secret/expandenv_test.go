package secret

import (
	"errors"
	"testing"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestExpand(t *testing.T) {
	env := mapLookup(map[string]string{"KEY": "abc", "EMPTY": ""})

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"plain", "plain", nil},
		{"${KEY}", "abc", nil},
		{"$KEY-x", "abc-x", nil},
		{"${EMPTY}", "", nil},
		{"$UNSET", "", nil},
		{"$$KEY", "$KEY", nil},
		{"cost $$5", "cost $5", nil},
		{"${NOPE} ${ALSO}", "", ErrMissingEnv},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Expand(tt.in, env)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpand_ListsMissingSorted(t *testing.T) {
	_, err := Expand("${ZED} ${ALPHA} ${ZED}", mapLookup(nil))
	if err == nil || err.Error() != "secret: missing environment variables: ALPHA, ZED" {
		t.Errorf("err = %v", err)
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("DISCOGS_TEST_VALUE", "v")
	got, err := ExpandEnvStrict("${DISCOGS_TEST_VALUE}")
	if err != nil || got != "v" {
		t.Errorf("got %q, %v", got, err)
	}
}
