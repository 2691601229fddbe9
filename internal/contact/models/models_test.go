package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rolodex/pkg/domain-errors"
)

func TestNewDate(t *testing.T) {
	t.Run("valid leap day", func(t *testing.T) {
		d, err := NewDate(2024, time.February, 29)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-29", d.String())
	})

	t.Run("rejects impossible dates", func(t *testing.T) {
		for _, c := range []struct {
			y int
			m time.Month
			d int
		}{
			{2023, time.February, 29},
			{2023, time.April, 31},
			{2023, time.Month(13), 1},
			{2023, time.January, 0},
			{0, time.January, 1},
		} {
			_, err := NewDate(c.y, c.m, c.d)
			assert.Error(t, err, "%d-%d-%d", c.y, c.m, c.d)
		}
	})
}

func TestDateWithin(t *testing.T) {
	start := MustDate(1990, time.January, 1)
	end := MustDate(1999, time.December, 31)

	assert.True(t, start.Within(start, end))
	assert.True(t, end.Within(start, end))
	assert.True(t, MustDate(1995, time.June, 15).Within(start, end))
	assert.False(t, MustDate(1989, time.December, 31).Within(start, end))
	assert.False(t, MustDate(2000, time.January, 1).Within(start, end))
}

func TestContactConflictsWith(t *testing.T) {
	existing := &Contact{Name: "Ada", Emails: []Email{{Address: "ada@example.com"}, {Address: "lovelace@example.com"}}}

	assert.True(t, (&Contact{Name: "Ada"}).ConflictsWith(existing))
	assert.True(t, (&Contact{Name: "Other", Emails: []Email{{Address: "x@example.com"}, {Address: "lovelace@example.com"}}}).ConflictsWith(existing))
	assert.False(t, (&Contact{Name: "ada"}).ConflictsWith(existing), "name comparison is case-sensitive")
	assert.False(t, (&Contact{Name: "Other", Emails: []Email{{Address: "ADA@example.com"}}}).ConflictsWith(existing), "address comparison is case-sensitive")
	assert.False(t, (&Contact{Name: "Other"}).ConflictsWith(&Contact{Name: "Ada"}))
}

func TestContactClone(t *testing.T) {
	birth := MustDate(1815, time.December, 10)
	original := &Contact{ID: 1, Name: "Ada", BirthDate: &birth, Emails: []Email{{ID: 1, Address: "ada@example.com"}}}

	clone := original.Clone()
	clone.Emails[0].Address = "changed@example.com"
	clone.BirthDate.Year = 1900

	assert.Equal(t, "ada@example.com", original.Emails[0].Address)
	assert.Equal(t, 1815, original.BirthDate.Year)
	assert.NotNil(t, (&Contact{}).Clone().Emails)
}

func TestOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o := Succeed(42)
		assert.True(t, o.OK())
		assert.Nil(t, o.Err())
		v, err := o.Unpack()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("failure", func(t *testing.T) {
		o := Fail[int](dErrors.New(dErrors.CodeNotFound, "missing"))
		assert.False(t, o.OK())
		assert.Equal(t, 0, o.Value())
		_, err := o.Unpack()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("nil failure becomes internal", func(t *testing.T) {
		o := Fail[int](nil)
		assert.False(t, o.OK())
		assert.Equal(t, dErrors.CodeInternal, o.Err().Code)
	})

	t.Run("zero outcome is never a success", func(t *testing.T) {
		var o Outcome[string]
		assert.False(t, o.OK())
		_, err := o.Unpack()
		var de *dErrors.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, dErrors.CodeInternal, de.Code)
	})
}
