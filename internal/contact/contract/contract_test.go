package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolodex/internal/contact/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *models.Date
		wantErr bool
	}{
		{name: "canonical", input: "1990-07-04", want: ptr(models.MustDate(1990, time.July, 4))},
		{name: "surrounding whitespace", input: "  2001-12-31 ", want: ptr(models.MustDate(2001, time.December, 31))},
		{name: "unpadded", input: "2000-1-5", want: ptr(models.MustDate(2000, time.January, 5))},
		{name: "leap day", input: "2024-02-29", want: ptr(models.MustDate(2024, time.February, 29))},
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "two segments", input: "2000-01", wantErr: true},
		{name: "four segments", input: "2000-01-01-01", wantErr: true},
		{name: "slashes", input: "2000/01/01", wantErr: true},
		{name: "non numeric", input: "2000-jan-01", wantErr: true},
		{name: "invalid month", input: "2000-13-01", wantErr: true},
		{name: "invalid day", input: "2023-02-29", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedDate)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(nil))
	assert.Equal(t, "0987-03-09", FormatDate(ptr(models.MustDate(987, time.March, 9))))
}

func TestParseFormatRoundTrip(t *testing.T) {
	d := models.MustDate(1969, time.July, 20)
	parsed, err := ParseDate(FormatDate(&d))
	require.NoError(t, err)
	assert.Equal(t, d, *parsed)
}

func TestToContact(t *testing.T) {
	t.Run("converts fields", func(t *testing.T) {
		c := ContactContract{
			ID:        4,
			Name:      "Ada",
			BirthDate: ptr("1815-12-10"),
			Emails:    []EmailContract{{ID: 9, IsPrimary: true, Address: "ada@example.com"}},
		}
		got, err := c.ToContact()
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ID)
		assert.Equal(t, models.MustDate(1815, time.December, 10), *got.BirthDate)
		assert.Equal(t, []models.Email{{ID: 9, IsPrimary: true, Address: "ada@example.com"}}, got.Emails)
	})

	t.Run("missing emails become an empty set", func(t *testing.T) {
		got, err := ContactContract{Name: "Ada"}.ToContact()
		require.NoError(t, err)
		assert.NotNil(t, got.Emails)
		assert.Empty(t, got.Emails)
		assert.Nil(t, got.BirthDate)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := ContactContract{Name: "  "}.ToContact()
		assert.ErrorIs(t, err, ErrMissingName)
	})

	t.Run("malformed birth date", func(t *testing.T) {
		_, err := ContactContract{Name: "Ada", BirthDate: ptr("10/12/1815")}.ToContact()
		assert.ErrorIs(t, err, ErrMalformedDate)
	})
}

func TestFromContactJSONShape(t *testing.T) {
	d := models.MustDate(1906, time.December, 9)
	body, err := json.Marshal(FromContacts([]*models.Contact{
		{ID: 1, Name: "Grace", BirthDate: &d, Emails: []models.Email{{ID: 2, IsPrimary: true, Address: "grace@example.com"}}},
		{ID: 3, Name: "Undated"},
	}))
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":1,"name":"Grace","birthDate":"1906-12-09","emails":[{"id":2,"isPrimary":true,"address":"grace@example.com"}]},
		{"id":3,"name":"Undated","birthDate":null,"emails":[]}
	]`, string(body))
}

func ptr[T any](v T) *T { return &v }
