package crudguard

import (
	"maps"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-crud"
)

// DefaultPolicyMap maps the standard CRUD verbs to the supplied read/write
// PolicyActions. Show/list map to read, everything else to write.
func DefaultPolicyMap(readAction, writeAction types.PolicyAction) map[crud.CrudOperation]types.PolicyAction {
	return map[crud.CrudOperation]types.PolicyAction{
		crud.OpRead:        readAction,
		crud.OpList:        readAction,
		crud.OpCreate:      writeAction,
		crud.OpCreateBatch: writeAction,
		crud.OpUpdate:      writeAction,
		crud.OpUpdateBatch: writeAction,
		crud.OpDelete:      writeAction,
		crud.OpDeleteBatch: writeAction,
	}
}

// ActivityPolicyMap is the policy map of the activity resource.
func ActivityPolicyMap() map[crud.CrudOperation]types.PolicyAction {
	return DefaultPolicyMap(types.PolicyActionActivityRead, types.PolicyActionActivityWrite)
}

// ReplyPolicyMap is the policy map of the reply resource.
func ReplyPolicyMap() map[crud.CrudOperation]types.PolicyAction {
	return DefaultPolicyMap(types.PolicyActionActivityRead, types.PolicyActionReplyWrite)
}

func clonePolicyMap(in map[crud.CrudOperation]types.PolicyAction) map[crud.CrudOperation]types.PolicyAction {
	if len(in) == 0 {
		return nil
	}
	cp := make(map[crud.CrudOperation]types.PolicyAction, len(in))
	maps.Copy(cp, in)
	return cp
}
