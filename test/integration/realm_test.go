// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

//go:build integration

package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alphapenguin/connrealm/internal/realm"
	"github.com/alphapenguin/connrealm/internal/realm/driver"
	pgrealm "github.com/alphapenguin/connrealm/internal/realm/postgres"
	"github.com/alphapenguin/connrealm/internal/realm/registry"
)

const (
	testUser     = "alice"
	testPassword = "alice-integration-pw"
	roleQuery    = "select rolname from app_user_roles where username = $1 order by id"
)

// setupPostgres starts a PostgreSQL container, creates a login role for
// testUser, and seeds the role table the role query reads.
func setupPostgres() (address string, cleanup func(), err error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("authdb"),
		tcpostgres.WithUsername("realmadmin"),
		tcpostgres.WithPassword("realmadmin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", nil, err
	}

	adminStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	admin, err := pgx.Connect(ctx, adminStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}
	defer admin.Close(ctx)

	stmts := []string{
		`create table app_user_roles (
			id serial primary key,
			username text not null,
			rolname text not null
		)`,
		`insert into app_user_roles (username, rolname) values
			('alice', 'admin'),
			('alice', 'ops'),
			('alice', 'admin'),
			('bob', 'viewer')`,
		fmt.Sprintf(`create role %s login password '%s'`, testUser, testPassword),
		fmt.Sprintf(`grant select on app_user_roles to %s`, testUser),
	}
	for _, stmt := range stmts {
		if _, err := admin.Exec(ctx, stmt); err != nil {
			_ = container.Terminate(ctx)
			return "", nil, err
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	// Credential-free address: the realm supplies credentials per attempt.
	address = fmt.Sprintf("postgres://%s:%s/authdb?sslmode=disable", host, port.Port())
	cleanup = func() { _ = container.Terminate(context.Background()) }
	return address, cleanup, nil
}

var _ = Describe("Realm against PostgreSQL", Ordered, func() {
	var (
		address string
		cleanup func()
	)

	BeforeAll(func() {
		var err error
		address, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
		pgrealm.Register()
	})

	AfterAll(func() {
		cleanup()
	})

	Describe("direct mode", func() {
		newRealm := func(roleQuery string) *realm.Realm {
			cfg := realm.Config{
				DriverName:        pgrealm.DriverName,
				ConnectionAddress: address,
				RoleQuery:         roleQuery,
			}
			r, err := realm.NewRealm(cfg, nil, driver.Global())
			Expect(err).NotTo(HaveOccurred())
			return r
		}

		It("authenticates a valid credential and resolves roles in order", func() {
			r := newRealm(roleQuery)
			p, err := r.Authenticate(context.Background(), testUser, testPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Username).To(Equal(testUser))
			Expect(p.Roles).To(Equal([]string{"admin", "ops", "admin"}))
		})

		It("rejects a wrong password as a credential error", func() {
			r := newRealm("")
			p, err := r.Authenticate(context.Background(), testUser, "wrong-password")
			Expect(p).To(BeNil())
			Expect(realm.IsAuthenticationRejected(err)).To(BeTrue())
			Expect(pgrealm.IsCredentialError(err)).To(BeTrue())
		})

		It("rejects an unknown user", func() {
			r := newRealm("")
			_, err := r.Authenticate(context.Background(), "mallory", "whatever")
			Expect(realm.IsAuthenticationRejected(err)).To(BeTrue())
		})

		It("produces a role-less principal without a role query", func() {
			r := newRealm("")
			p, err := r.Authenticate(context.Background(), testUser, testPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Roles).To(BeEmpty())
		})

		It("fails the whole attempt when the role query is broken", func() {
			r := newRealm("select rolname from no_such_table where username = $1")
			p, err := r.Authenticate(context.Background(), testUser, testPassword)
			Expect(p).To(BeNil())
			Expect(realm.IsRoleQueryError(err)).To(BeTrue())
		})

		It("ignores extra result columns in the role query", func() {
			r := newRealm("select rolname, id, username from app_user_roles where username = $1 order by id")
			p, err := r.Authenticate(context.Background(), testUser, testPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Roles).To(Equal([]string{"admin", "ops", "admin"}))
		})
	})

	Describe("factory mode", func() {
		It("authenticates through a registry-bound connection factory", func() {
			connector, err := pgrealm.NewConnector(address)
			Expect(err).NotTo(HaveOccurred())

			reg := registry.New()
			Expect(reg.Bind("auth-db", connector)).To(Succeed())

			cfg := realm.Config{ResourceName: "auth-db", RoleQuery: roleQuery}
			r, err := realm.NewRealm(cfg, reg, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := r.Authenticate(context.Background(), testUser, testPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.HasRole("ops")).To(BeTrue())
		})

		It("fails lookup when the scope does not match the binding", func() {
			connector, err := pgrealm.NewConnector(address)
			Expect(err).NotTo(HaveOccurred())

			reg := registry.New()
			Expect(reg.Bind("auth-db", connector)).To(Succeed())

			cfg := realm.Config{ResourceName: "auth-db", UseLocalScope: true}
			r, err := realm.NewRealm(cfg, reg, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Authenticate(context.Background(), testUser, testPassword)
			Expect(realm.IsLookupError(err)).To(BeTrue())
		})
	})
})
