package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList(t *testing.T) {
	acl := NewAllowList([]int64{730841948, 7290906386})

	assert.True(t, acl.Allowed(730841948))
	assert.True(t, acl.Allowed(7290906386))
	assert.False(t, acl.Allowed(1))
}

func TestEmptyAllowListDeniesEveryone(t *testing.T) {
	acl := NewAllowList(nil)
	assert.False(t, acl.Allowed(730841948))
	assert.False(t, acl.Allowed(0))
}
