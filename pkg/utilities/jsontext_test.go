package utilities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"+2348000000000"`, "+2348000000000"},
		{"integer", `2348000000000`, "2348000000000"},
		{"decimal keeps literal", `1.50`, "1.50"},
		{"negative", `-7`, "-7"},
		{"true", `true`, "true"},
		{"false", `false`, "false"},
		{"null", `null`, ""},
		{"escaped string", `"Ada \"A\" L."`, `Ada "A" L.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Phone Text `json:"phone"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"phone":`+tt.in+`}`), &v))
			require.Equal(t, tt.want, v.Phone.String())
		})
	}
}

func TestText_RejectsCompound(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `[1,2]`} {
		var v struct {
			Phone Text `json:"phone"`
		}
		require.Error(t, json.Unmarshal([]byte(`{"phone":`+in+`}`), &v), in)
	}
}

func TestText_MissingFieldIsEmpty(t *testing.T) {
	var v struct {
		Name  Text `json:"name"`
		Phone Text `json:"phone"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ada"}`), &v))
	require.Equal(t, "Ada", v.Name.String())
	require.Empty(t, v.Phone.String())
}
