package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"lesson:complete",
		"progress:view-own",
		"assessment:take",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"user:change_password",
	},
	"teacher": {
		"course:view",
		"course:author",
		"assessment:author",
		"assessment:view-full",
		"progress:view-all",
		"attempt:view-all",
		"users:bulk_upsert",
		"users:list",
		"media:upload",
		"sync:export",
	},
	"admin": {
		"*", // everything
	},
}
