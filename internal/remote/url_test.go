package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRoute(t *testing.T) {
	mapping := map[string]string{"dasLamm": "foo/bar", "home": "/"}
	assert.Equal(t, "/foo/bar", MapRoute("dasLamm", mapping))
	assert.Equal(t, "daslamm", MapRoute("daslamm", mapping))
	assert.Equal(t, "/", MapRoute("home", mapping))
	assert.Equal(t, "/already/rooted", MapRoute("/already/rooted", mapping))
	assert.Equal(t, "/a/b", MapRoute("a/b", nil))
	assert.Equal(t, "plain", MapRoute("plain", nil))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://foo.bar/foo/bar", JoinURL("http://foo.bar/", "/foo/bar"))
	assert.Equal(t, "http://foo.bar/page", JoinURL("http://foo.bar", "page"))
	assert.Equal(t, "http://foo.bar/", JoinURL("http://foo.bar//", "/"))
}

type failingModifier struct{}

func (failingModifier) Applicable(*Resolution) bool { return false }
func (failingModifier) QueryFragment(*Resolution) string { return "" }
func (failingModifier) BreakChain() bool { return false }
func (failingModifier) Name() string { return "broken" }
func (failingModifier) Evaluate(*Resolution) (bool, error) { return false, errors.New("not a bool") }

func TestApplyModifiers(t *testing.T) {
	t.Run("fragments join with ? then &", func(t *testing.T) {
		res := &Resolution{URL: "/foo/bar"}
		err := applyModifiers(res, []URLModifier{
			QueryModifier{Query: "?lang=de"},
			QueryModifier{Query: "&page=2"},
			QueryModifier{Query: "x=1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "/foo/bar?lang=de&page=2&x=1", res.URL)
	})

	t.Run("existing query continues with &", func(t *testing.T) {
		res := &Resolution{URL: "page?id=1"}
		require.NoError(t, applyModifiers(res, []URLModifier{QueryModifier{Query: "lang=de"}}))
		assert.Equal(t, "page?id=1&lang=de", res.URL)
	})

	t.Run("break stops chain even when not applicable", func(t *testing.T) {
		res := &Resolution{URL: "x"}
		never := func(*Resolution) bool { return false }
		err := applyModifiers(res, []URLModifier{
			QueryModifier{When: never, Query: "a=1", Break: true},
			QueryModifier{Query: "b=2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "x", res.URL)
	})

	t.Run("break after applied modifier", func(t *testing.T) {
		res := &Resolution{URL: "x"}
		err := applyModifiers(res, []URLModifier{
			QueryModifier{Query: "a=1", Break: true},
			QueryModifier{Query: "b=2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "x?a=1", res.URL)
	})

	t.Run("condition sees resolution", func(t *testing.T) {
		res := &Resolution{URL: "x", Identifier: Identifier{Namespace: "shop"}}
		onlyShop := func(r *Resolution) bool { return r.Namespace() == "shop" }
		require.NoError(t, applyModifiers(res, []URLModifier{QueryModifier{When: onlyShop, Query: "shop=1"}}))
		assert.Equal(t, "x?shop=1", res.URL)
	})

	t.Run("nil modifier", func(t *testing.T) {
		var typed *QueryModifier
		err := applyModifiers(&Resolution{}, []URLModifier{QueryModifier{}, typed})
		require.ErrorIs(t, err, ErrInvalidModifier)
		var invalid *InvalidModifierError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 1, invalid.Index)
	})

	t.Run("evaluation failure", func(t *testing.T) {
		err := applyModifiers(&Resolution{}, []URLModifier{failingModifier{}})
		require.ErrorIs(t, err, ErrInvalidModifier)
		assert.Contains(t, err.Error(), "broken")
	})
}
