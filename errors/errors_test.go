package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf("error: %s %d", "test", 42)
	require.NotNil(t, err)
	assert.Equal(t, "error: test 42", err.Error())
}

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := Wrapf(ErrFetchFailure, "fetching %q", "qwidget.html")

	assert.Contains(t, wrapped.Error(), "qwidget.html")
	assert.Contains(t, wrapped.Error(), "page fetch failure")
	assert.True(t, Is(wrapped, ErrFetchFailure))
	assert.False(t, Is(wrapped, ErrCircularReference))
}

func TestIs(t *testing.T) {
	err1 := New("error 1")
	err2 := New("error 2")
	wrapped := Wrap(err1, "wrapped")

	assert.True(t, Is(wrapped, err1))
	assert.False(t, Is(wrapped, err2))
	assert.False(t, Is(nil, err1))
}

type locatedError struct {
	uri string
}

func (e *locatedError) Error() string {
	return "failed at " + e.uri
}

func TestAs(t *testing.T) {
	original := &locatedError{uri: "mem://docs/qwidget.html"}
	wrapped := Wrap(original, "wrapped")

	var target *locatedError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "mem://docs/qwidget.html", target.uri)
}

func TestSentinelHelpers(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		isParse     bool
		isCircular  bool
		isFetch     bool
	}{
		{
			description: "nil error matches nothing",
		},
		{
			description: "bare parse sentinel",
			err:         ErrParseFailure,
			isParse:     true,
		},
		{
			description: "wrapped circular sentinel",
			err:         Wrapf(ErrCircularReference, "type %q", "QWidget"),
			isCircular:  true,
		},
		{
			description: "fetch error constructor",
			err:         NewFetchError("GET %s: %d", "/docs/qobject.html", 503),
			isFetch:     true,
		},
		{
			description: "unrelated error",
			err:         New("disk full"),
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.isParse, IsParseFailure(tc.err), tc.description)
		assert.Equal(t, tc.isCircular, IsCircular(tc.err), tc.description)
		assert.Equal(t, tc.isFetch, IsFetchFailure(tc.err), tc.description)
	}
}

func TestNewFetchErrorMessage(t *testing.T) {
	err := NewFetchError("GET %s: status %d", "https://docs.example.com/qwidget.html", 404)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.True(t, Is(err, ErrFetchFailure))
}

func TestWithHint(t *testing.T) {
	err := Wrap(ErrConfigLoad, "mappings.toml")
	err = WithHint(err, "run 'docbind mappings validate' for details")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "run 'docbind mappings validate' for details", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func TestErrorChaining(t *testing.T) {
	err := Wrap(ErrFetchFailure, "layer 1")
	err = WithHint(err, "check the base URL")
	err = WithDetail(err, "redirect limit exceeded")
	err = Wrap(err, "layer 2")

	assert.True(t, Is(err, ErrFetchFailure))
	assert.Contains(t, err.Error(), "layer 2")
	assert.Contains(t, err.Error(), "layer 1")

	hints := GetAllHints(err)
	assert.Contains(t, hints, "check the base URL")

	details := GetAllDetails(err)
	assert.Contains(t, details, "redirect limit exceeded")
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to fetch page")
	fmt.Println(err)
	// Output: failed to fetch page: connection failed
}
