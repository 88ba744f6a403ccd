package directory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordMarshalsEmptyLists(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewRecord())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"specializations":[]`)
	assert.Contains(t, string(data), `"contacts":[]`)
}

func TestRecordUnmarshalSeedsSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want func() Record
	}{
		{
			name: "empty object",
			raw:  `{}`,
			want: NewRecord,
		},
		{
			name: "null lists",
			raw:  `{"title":"BBW","specializations":null,"contacts":null}`,
			want: func() Record {
				r := NewRecord()
				r.Title = "BBW"
				return r
			},
		},
		{
			name: "partial address and contact",
			raw:  `{"address":{"city":"Berlin"},"contacts":[{"email":"a@b.de"}]}`,
			want: func() Record {
				r := NewRecord()
				r.Address.City = "Berlin"
				r.Contacts = []Contact{{Name: ContactNameNotFound, Phone: PhoneNotFound, Email: "a@b.de"}}
				return r
			},
		},
		{
			name: "empty phone is kept",
			raw:  `{"contacts":[{"name":"A","phone":"","email":"x"}]}`,
			want: func() Record {
				r := NewRecord()
				r.Contacts = []Contact{{Name: "A", Phone: "", Email: "x"}}
				return r
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got Record
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &got))
			assert.Equal(t, tc.want(), got)
		})
	}
}

func TestRecordUnmarshalRejectsWrongShape(t *testing.T) {
	t.Parallel()

	var r Record
	assert.Error(t, json.Unmarshal([]byte(`{"specializations":"x"}`), &r))
}
