package issues

import (
	"testing"

	"github.com/erraggy/reqgate/internal/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueString(t *testing.T) {
	issue := New(pathutil.Path{pathutil.KeySegment("name")}, "type", "expected type string but got integer")
	assert.Equal(t, "$.name", issue.Field)
	assert.Equal(t, "✗ $.name [type]: expected type string but got integer", issue.String())
}

func TestNewf(t *testing.T) {
	issue := Newf(nil, "required", "required property %q is missing", "id")
	assert.Equal(t, "$", issue.Field)
	assert.Equal(t, `required property "id" is missing`, issue.Message)
	assert.Equal(t, "required", issue.Validator)
}

func TestSort(t *testing.T) {
	t.Run("orders by structured path", func(t *testing.T) {
		list := []Issue{
			New(pathutil.Path{pathutil.KeySegment("tags"), pathutil.IndexSegment(10)}, "type", "a"),
			New(pathutil.Path{pathutil.KeySegment("name")}, "type", "b"),
			New(nil, "required", "c"),
			New(pathutil.Path{pathutil.KeySegment("tags"), pathutil.IndexSegment(2)}, "type", "d"),
		}
		Sort(list)

		var fields []string
		for _, i := range list {
			fields = append(fields, i.Field)
		}
		assert.Equal(t, []string{"$", "$.name", "$.tags[2]", "$.tags[10]"}, fields)
		assert.True(t, IsSorted(list))
	})

	t.Run("keeps evaluation order at the same path", func(t *testing.T) {
		loc := pathutil.Path{pathutil.KeySegment("name")}
		list := []Issue{
			New(loc, "minLength", "first"),
			New(nil, "required", "root"),
			New(loc, "pattern", "second"),
		}
		Sort(list)
		require.Len(t, list, 3)
		assert.Equal(t, "root", list[0].Message)
		assert.Equal(t, "first", list[1].Message)
		assert.Equal(t, "second", list[2].Message)
	})

	t.Run("sorts issues built from field strings only", func(t *testing.T) {
		list := []Issue{
			{Field: "$.b", Message: "x", Validator: "type"},
			{Field: "$['a b']", Message: "y", Validator: "type"},
			{Field: "$", Message: "z", Validator: "required"},
			{Field: "not a path", Message: "w", Validator: "custom"},
		}
		Sort(list)
		assert.Equal(t, "$", list[0].Field)
		assert.Equal(t, "$['a b']", list[1].Field)
		assert.Equal(t, "$.b", list[2].Field)
		assert.Equal(t, "not a path", list[3].Field)
	})

	t.Run("message does not affect order", func(t *testing.T) {
		a := Issue{Field: "$.x", Message: "zzz"}
		b := Issue{Field: "$.x", Message: "aaa"}
		assert.Zero(t, Compare(a, b))
	})
}
