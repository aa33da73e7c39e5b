package account

import (
	"context"
	"errors"
	"os"
	"portfolio/authority"
	"portfolio/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	systemAdminRole       = Role{ID: "system-admin", Title: "System Administrator"}
	SystemAdminPermission = Permission{ID: "system:admin", Title: "System Administration"}

	catalogManagerRole       = Role{ID: "catalog-manager", Title: "Catalog Manager"}
	CatalogManagePermission  = Permission{ID: "catalog:manage", Title: "Catalog Management"}
	CatalogViewPermission    = Permission{ID: "catalog:view", Title: "Catalog View"}
	approverLevelOneRole     = Role{ID: "approver-l1", Title: "Approver Level 1"}
	ApproverLevelOnePerm     = Permission{ID: "catalog:approver-l1", Title: "Catalog Approver Level 1"}
	approverLevelTwoRole     = Role{ID: "approver-l2", Title: "Approver Level 2"}
	ApproverLevelTwoPerm     = Permission{ID: "catalog:approver-l2", Title: "Catalog Approver Level 2"}
	catalogViewerRole        = Role{ID: "catalog-viewer", Title: "Catalog Viewer"}
	defaultRolePermBindings  = []RolePermissionBinding{
		{ID: 1, RoleID: systemAdminRole.ID, PermissionID: SystemAdminPermission.ID},
		{ID: 2, RoleID: catalogManagerRole.ID, PermissionID: CatalogManagePermission.ID},
		{ID: 3, RoleID: catalogManagerRole.ID, PermissionID: CatalogViewPermission.ID},
		{ID: 4, RoleID: approverLevelOneRole.ID, PermissionID: ApproverLevelOnePerm.ID},
		{ID: 5, RoleID: approverLevelOneRole.ID, PermissionID: CatalogViewPermission.ID},
		{ID: 6, RoleID: approverLevelTwoRole.ID, PermissionID: ApproverLevelTwoPerm.ID},
		{ID: 7, RoleID: approverLevelTwoRole.ID, PermissionID: CatalogViewPermission.ID},
		{ID: 8, RoleID: catalogViewerRole.ID, PermissionID: CatalogViewPermission.ID},
	}
)

var (
	LoadPermFunc = loadPerms
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	for _, role := range []Role{systemAdminRole, catalogManagerRole, approverLevelOneRole, approverLevelTwoRole, catalogViewerRole} {
		if err := db.Save(&role).Error; err != nil {
			return err
		}
	}
	for _, perm := range []Permission{SystemAdminPermission, CatalogManagePermission, CatalogViewPermission,
		ApproverLevelOnePerm, ApproverLevelTwoPerm} {
		if err := db.Save(&perm).Error; err != nil {
			return err
		}
	}
	for i := range defaultRolePermBindings {
		if err := db.Save(&defaultRolePermBindings[i]).Error; err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			initialAdminPassword := os.Getenv("INITIAL_ADMIN_PASSWORD")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword)}).Error; err != nil {
				return err
			}
		}
		return tx.Save(&UserRoleBinding{ID: 1, UserID: 1, RoleID: systemAdminRole.ID}).Error
	})
}

func loadPerms(uid types.ID) authority.Permissions {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	var roles []string
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: uid}).Pluck("role_id", &roles).Error; err != nil {
		panic(err)
	}

	var perms []string
	if len(roles) > 0 {
		if err := db.Model(&RolePermissionBinding{}).Where("role_id IN (?)", roles).Pluck("permission_id", &perms).Error; err != nil {
			panic(err)
		}
	}
	if perms == nil {
		perms = []string{}
	}
	return perms
}
