package user_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vacation-management/internal/auth"
	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/vacation-management/internal/user"
)

var _ = Describe("User", func() {
	It("reports direct reporting lines only", func() {
		u := &user.User{ID: 4, Role: auth.RoleCollaborator, ManagerID: int64Ptr(2)}
		Expect(u.ReportsTo(2)).To(BeTrue())
		Expect(u.ReportsTo(1)).To(BeFalse())
		Expect((&user.User{ID: 1, Role: auth.RoleAdmin}).ReportsTo(0)).To(BeFalse())
	})

	It("parses stored legacy role codes", func() {
		u := user.FromDataModel(&userDatamodel.User{ID: 1, Role: "0"})
		Expect(u.Role).To(Equal(auth.RoleAdmin))
		Expect(u.IsAdmin()).To(BeTrue())
	})

	It("converts to the data model", func() {
		u := &user.User{ID: 4, Name: "John", Email: "john@company.com", Role: auth.RoleCollaborator, ManagerID: int64Ptr(2)}
		model := user.ToDataModel(u)
		Expect(model.Role).To(Equal("Collaborator"))
		Expect(*model.ManagerID).To(Equal(int64(2)))
	})
})
