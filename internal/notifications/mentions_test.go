package notifications

import (
	"reflect"
	"testing"
)

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "single mention",
			body: "hey @maya check this out",
			want: []string{"maya"},
		},
		{
			name: "duplicates collapse",
			body: "@maya and @maya again, plus @noam",
			want: []string{"maya", "noam"},
		},
		{
			name: "case sensitive",
			body: "@Maya is not @maya",
			want: []string{"Maya", "maya"},
		},
		{
			name: "punctuation boundary",
			body: "thanks @dev_ops! and (@qa)",
			want: []string{"dev_ops", "qa"},
		},
		{
			name: "email is still a match",
			body: "write to noreply@socisphere.app",
			want: []string{"socisphere"},
		},
		{
			name: "no mentions",
			body: "nothing to see here",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractMentions(tc.body)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
