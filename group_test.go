package svcspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceGroupExpand(t *testing.T) {
	g := ServiceGroup{
		Name:    "web",
		Command: "/usr/bin/httpd --port {{add . 8000}}",
		Workers: 2,
		Base: RawSpec{
			Command:     "/ignored",
			User:        "www",
			Ensure:      "running",
			Environment: map[string]string{"ROLE": "web"},
		},
	}

	entries, err := g.Expand()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "web_0", entries[0].Name)
	assert.Equal(t, "/usr/bin/httpd --port 8000", entries[0].Raw.Command)
	assert.Equal(t, "web_1", entries[1].Name)
	assert.Equal(t, "/usr/bin/httpd --port 8001", entries[1].Raw.Command)

	for _, e := range entries {
		assert.Equal(t, "www", e.Raw.User)
		assert.Equal(t, "running", e.Raw.Ensure)
		assert.Equal(t, map[string]string{"ROLE": "web"}, e.Raw.Environment)
	}
	assert.Equal(t, "/ignored", g.Base.Command)
}

func TestServiceGroupExpandCommandWithSlashes(t *testing.T) {
	g := ServiceGroup{Name: "fetch", Command: "/opt/fetch/bin/run --shard {{.}}", Workers: 1, Base: RawSpec{User: "fred"}}

	entries, err := g.Expand()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fetch_0", entries[0].Name)
	assert.Equal(t, "/opt/fetch/bin/run --shard 0", entries[0].Raw.Command)
}

func TestServiceGroupExpandErrors(t *testing.T) {
	_, err := ServiceGroup{Name: "web", Workers: 1}.Expand()
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = ServiceGroup{Name: "web", Command: "/bin/true", Workers: -2}.Expand()
	assert.ErrorContains(t, err, `group "web"`)
}

func TestServiceGroupExpandNestedGroupName(t *testing.T) {
	g := ServiceGroup{Name: "web/api", Command: "/bin/srv {{.}}", Workers: 2, Base: RawSpec{User: "www"}}

	entries, err := g.Expand()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Name: "web/api_0", Raw: RawSpec{Command: "/bin/srv 0", User: "www"}}, entries[0])
	assert.Equal(t, Entry{Name: "web/api_1", Raw: RawSpec{Command: "/bin/srv 1", User: "www"}}, entries[1])

	for _, e := range entries {
		_, err := Compile(e.Name, e.Raw)
		assert.NoError(t, err, e.Name)
	}
}
