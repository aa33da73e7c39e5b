package account_test

import (
	"portfolio/account"
	"portfolio/bizerror"
	"portfolio/persistence"
	"portfolio/testinfra"
	"testing"

	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("account")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&account.User{}, &account.Role{}, &account.Permission{},
		&account.RolePermissionBinding{}, &account.UserRoleBinding{}).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestHashSha256(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be deterministic and hex encoded", func(t *testing.T) {
		Expect(account.HashSha256("admin123")).To(Equal(account.HashSha256("admin123")))
		Expect(account.HashSha256("admin123")).ToNot(Equal(account.HashSha256("admin124")))
		Expect(len(account.HashSha256("x"))).To(Equal(64))
	})
}

func TestDefaultSecurityConfiguration(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should seed roles, permissions and the admin user", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		Expect(account.DefaultSecurityConfiguration()).To(BeNil())

		db := testDatabase.DS.GormDB(nil)
		admin := account.User{}
		Expect(db.Where(&account.User{ID: 1}).First(&admin).Error).To(BeNil())
		Expect(admin.Name).To(Equal("admin"))
		Expect(admin.Secret).To(Equal(account.HashSha256("admin123")))

		perms := account.LoadPermFunc(1)
		Expect(perms.HasRole(account.SystemAdminPermission.ID)).To(BeTrue())

		// running it again must not duplicate nor reset anything
		Expect(db.Model(&account.User{}).Where(&account.User{ID: 1}).
			Update(&account.User{Secret: account.HashSha256("changed")}).Error).To(BeNil())
		Expect(account.DefaultSecurityConfiguration()).To(BeNil())
		Expect(db.Where(&account.User{ID: 1}).First(&admin).Error).To(BeNil())
		Expect(admin.Secret).To(Equal(account.HashSha256("changed")))
	})

	t.Run("perms of an unbound user should be empty, not nil", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		perms := account.LoadPermFunc(999)
		Expect(perms).ToNot(BeNil())
		Expect(len(perms)).To(Equal(0))
	})
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("system admin permission is required", func(t *testing.T) {
		creation := account.UserCreation{Name: "new user", Secret: "secret123"}
		info, err := account.CreateUser(&creation, testinfra.BuildSession(10, account.CatalogManagePermission.ID))
		Expect(info).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should create user with hashed secret", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, account.SystemAdminPermission.ID)
		info, err := account.CreateUser(&account.UserCreation{Name: "ann", Secret: "glen8820", Nickname: "Ann"}, admin)
		Expect(err).To(BeNil())
		Expect(info.ID).ToNot(BeZero())
		Expect(info.Name).To(Equal("ann"))
		Expect(info.Nickname).To(Equal("Ann"))

		stored := account.User{}
		db := testDatabase.DS.GormDB(nil)
		Expect(db.Where(&account.User{ID: info.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("glen8820")))

		users, err := account.QueryUsers(admin)
		Expect(err).To(BeNil())
		Expect(len(*users)).To(Equal(1))
		Expect((*users)[0]).To(Equal(*info))
	})
}
