package auth_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vacation-management/internal/auth"
)

var _ = Describe("Principal", func() {
	DescribeTable("ParsePrincipal accepts",
		func(rawID, rawRole string, expected auth.Principal) {
			p, err := auth.ParsePrincipal(rawID, rawRole)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(expected))
		},
		Entry("role names", "4", "Collaborator", auth.Principal{UserID: 4, Role: auth.RoleCollaborator}),
		Entry("any case", "2", "manager", auth.Principal{UserID: 2, Role: auth.RoleManager}),
		Entry("numeric codes", "1", "0", auth.Principal{UserID: 1, Role: auth.RoleAdmin}),
		Entry("padding", " 7 ", " 2 ", auth.Principal{UserID: 7, Role: auth.RoleCollaborator}),
	)

	DescribeTable("ParsePrincipal rejects",
		func(rawID, rawRole string) {
			_, err := auth.ParsePrincipal(rawID, rawRole)
			Expect(err).To(HaveOccurred())
		},
		Entry("missing id", "", "Admin"),
		Entry("zero id", "0", "Admin"),
		Entry("negative id", "-3", "Admin"),
		Entry("missing role", "1", ""),
		Entry("unknown role", "1", "Owner"),
		Entry("out of range code", "1", "3"),
	)

	It("accepts role names and codes in JSON", func() {
		var r auth.Role
		Expect(json.Unmarshal([]byte(`"Admin"`), &r)).To(Succeed())
		Expect(r).To(Equal(auth.RoleAdmin))
		Expect(json.Unmarshal([]byte(`1`), &r)).To(Succeed())
		Expect(r).To(Equal(auth.RoleManager))
		Expect(json.Unmarshal([]byte(`true`), &r)).NotTo(Succeed())
	})

	It("only treats exact names as valid", func() {
		Expect(auth.RoleAdmin.Valid()).To(BeTrue())
		Expect(auth.Role("admin").Valid()).To(BeFalse())
		Expect(auth.Role("").Valid()).To(BeFalse())
	})

	It("round-trips through the context", func() {
		p := auth.Principal{UserID: 3, Role: auth.RoleManager}
		got, ok := auth.PrincipalFromContext(auth.ContextWithPrincipal(context.Background(), p))
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(p))

		_, ok = auth.PrincipalFromContext(context.Background())
		Expect(ok).To(BeFalse())
	})
})
