package models

// CatalogEntry is one fixed (name, category, description) tuple of the
// permission catalog.
type CatalogEntry struct {
	Name        string
	Category    PermissionCategory
	Description string
}

// catalog is the complete permission catalog seeded into every initialized
// project. Exactly these ten tuples exist; nothing else is ever created.
var catalog = []CatalogEntry{
	{Name: "read_files", Category: CategoryFileOperations, Description: "Read files in Storage Service"},
	{Name: "write_files", Category: CategoryFileOperations, Description: "Write/upload files in Storage Service"},
	{Name: "delete_files", Category: CategoryFileOperations, Description: "Delete files in Storage Service"},
	{Name: "lock_files", Category: CategoryFileOperations, Description: "Lock files in Storage Service"},
	{Name: "validate_files", Category: CategoryFileOperations, Description: "Validate files in Storage Service"},
	{Name: "update_project", Category: CategoryProjectOperations, Description: "Update project metadata"},
	{Name: "delete_project", Category: CategoryProjectOperations, Description: "Delete/archive project"},
	{Name: "manage_members", Category: CategoryMemberOperations, Description: "Add/remove project members"},
	{Name: "manage_roles", Category: CategoryMemberOperations, Description: "Create/modify project roles"},
	{Name: "manage_policies", Category: CategoryMemberOperations, Description: "Create/modify project policies"},
}

// Catalog returns a copy of the fixed permission catalog in seeding order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}
