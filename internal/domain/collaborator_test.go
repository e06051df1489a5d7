package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	name := "Alice Liddell"
	summaries := Summarize([]Collaborator{
		{Login: "alice", Name: &name, Permissions: Permissions{Admin: true}},
		{Login: "bob"},
	})

	require.Len(t, summaries, 2)
	assert.Equal(t, "alice", summaries[0].Login)
	assert.Equal(t, &name, summaries[0].Name)
	assert.Nil(t, summaries[1].Email)
	assert.Equal(t, []string{"alice", "bob"}, Logins(summaries))

	empty := Summarize(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
