package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/config"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"
)

// runAdminCommand dispatches the user/service/group/member management
// subcommands. These operate on the same database the server uses and are
// meant to be run on the host while the server is stopped or pointed at the
// same DSN.
func runAdminCommand(args []string) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "user":
		runUserCommand(db, args[1:])
	case "service":
		runServiceCommand(db, args[1:])
	case "group":
		runGroupCommand(db, args[1:])
	case "member":
		runMemberCommand(db, args[1:])
	}
}

func runUserCommand(db *store.Store, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: user list|show|create|set-password|import-hash|unlock|superuser|set-uuid|delete ...")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		users, err := db.ListUsers()
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		for _, u := range users {
			flags := ""
			if u.Superuser {
				flags += " superuser"
			}
			if u.Locked {
				flags += " locked"
			}
			if !u.Active {
				flags += " inactive"
			}
			fmt.Printf("%s\t%s%s\n", u.Username, u.Email, flags)
		}

	case "show":
		user := lookupUser(db, args[1:])
		fmt.Printf("username: %s\nemail: %s\nuuid: %s\nfailed attempts: %d\n",
			user.Username, user.Email, user.UUID, user.FailedLoginAttempts)

		services, err := db.UserServices(user.ID)
		if err != nil {
			log.Fatalf("Failed to list services: %v", err)
		}
		for _, svc := range services {
			fmt.Printf("service: %s\n", svc.Name)
		}
		groups, err := db.UserGroups(user.ID)
		if err != nil {
			log.Fatalf("Failed to list groups: %v", err)
		}
		for _, group := range groups {
			fmt.Printf("group: %s\n", group.Name)
		}

	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("username", "", "Login name")
		email := fs.String("email", "", "Email address")
		fullName := fs.String("full-name", "", "Display name")
		fs.Parse(args[1:])
		if *username == "" || *email == "" {
			fmt.Println("Usage: user create -username NAME -email ADDR [-full-name NAME]")
			os.Exit(1)
		}

		hash, err := password.Hash(promptSecret("Password: "))
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			Username:     *username,
			Email:        *email,
			FullName:     *fullName,
			PasswordHash: hash,
			Active:       true,
		}
		if err := db.CreateUser(user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("Created user %s (uuid %s)\n", user.Username, user.UUID)

	case "set-password":
		user := lookupUser(db, args[1:])
		hash, err := password.Hash(promptSecret("New password: "))
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		if err := db.SetUserPassword(user.ID, hash); err != nil {
			log.Fatalf("Failed to set password: %v", err)
		}
		fmt.Printf("Password updated for %s\n", user.Username)

	case "import-hash":
		if len(args) < 3 {
			fmt.Println("Usage: user import-hash USERNAME ENCODED_HASH")
			os.Exit(1)
		}
		user := mustGetUser(db, args[1])
		hash, err := password.ImportFreeIPAHash(args[2])
		if err != nil {
			log.Fatalf("Failed to import hash: %v", err)
		}
		if err := db.SetUserPassword(user.ID, hash); err != nil {
			log.Fatalf("Failed to store imported hash: %v", err)
		}
		fmt.Printf("Imported hash for %s\n", user.Username)

	case "unlock":
		user := lookupUser(db, args[1:])
		if err := db.UnlockUser(user.ID); err != nil {
			log.Fatalf("Failed to unlock user: %v", err)
		}
		fmt.Printf("Unlocked %s\n", user.Username)

	case "superuser":
		fs := flag.NewFlagSet("user superuser", flag.ExitOnError)
		username := fs.String("username", "", "Login name")
		revoke := fs.Bool("revoke", false, "Remove superuser status instead of granting it")
		fs.Parse(args[1:])
		user := mustGetUser(db, *username)
		if err := db.SetUserSuperuser(user.ID, !*revoke); err != nil {
			log.Fatalf("Failed to update superuser flag: %v", err)
		}
		fmt.Printf("Superuser=%v for %s\n", !*revoke, user.Username)

	case "set-uuid":
		if len(args) < 3 {
			fmt.Println("Usage: user set-uuid USERNAME UUID")
			os.Exit(1)
		}
		user := mustGetUser(db, args[1])
		if err := db.SetUserUUID(user.ID, args[2]); err != nil {
			log.Fatalf("Failed to set UUID: %v", err)
		}
		fmt.Printf("UUID updated for %s\n", user.Username)

	case "delete":
		user := lookupUser(db, args[1:])
		if err := db.DeleteUser(user.ID); err != nil {
			log.Fatalf("Failed to delete user: %v", err)
		}
		fmt.Printf("Deleted %s\n", user.Username)

	default:
		fmt.Printf("Unknown user subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runServiceCommand(db *store.Store, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: service list|create|set-password|import-hash|set-hyperlink|delete ...")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		services, err := db.ListServices()
		if err != nil {
			log.Fatalf("Failed to list services: %v", err)
		}
		for _, svc := range services {
			fmt.Printf("%s\t%s\t%s\n", svc.Name, svc.FullName, svc.Hyperlink)
		}

	case "create":
		fs := flag.NewFlagSet("service create", flag.ExitOnError)
		name := fs.String("name", "", "Service name (appears in the DN)")
		fullName := fs.String("full-name", "", "Display name")
		hyperlink := fs.String("hyperlink", "", "Service URL")
		fs.Parse(args[1:])
		if *name == "" {
			fmt.Println("Usage: service create -name NAME [-full-name NAME] [-hyperlink URL]")
			os.Exit(1)
		}

		hash, err := password.Hash(promptSecret("Service password: "))
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		svc := &models.Service{
			Name:         *name,
			FullName:     *fullName,
			Hyperlink:    *hyperlink,
			PasswordHash: hash,
			Active:       true,
		}
		if err := db.CreateService(svc); err != nil {
			log.Fatalf("Failed to create service: %v", err)
		}
		fmt.Printf("Created service %s\n", svc.Name)

	case "set-password":
		svc := mustGetService(db, nameArg(args[1:], "service set-password NAME"))
		hash, err := password.Hash(promptSecret("New password: "))
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		if err := db.SetServicePassword(svc.ID, hash); err != nil {
			log.Fatalf("Failed to set password: %v", err)
		}
		fmt.Printf("Password updated for %s\n", svc.Name)

	case "import-hash":
		if len(args) < 3 {
			fmt.Println("Usage: service import-hash NAME ENCODED_HASH")
			os.Exit(1)
		}
		svc := mustGetService(db, args[1])
		hash, err := password.ImportFreeIPAHash(args[2])
		if err != nil {
			log.Fatalf("Failed to import hash: %v", err)
		}
		if err := db.SetServicePassword(svc.ID, hash); err != nil {
			log.Fatalf("Failed to store imported hash: %v", err)
		}
		fmt.Printf("Imported hash for %s\n", svc.Name)

	case "set-hyperlink":
		if len(args) < 3 {
			fmt.Println("Usage: service set-hyperlink NAME URL")
			os.Exit(1)
		}
		svc := mustGetService(db, args[1])
		if err := db.SetServiceHyperlink(svc.ID, args[2]); err != nil {
			log.Fatalf("Failed to set hyperlink: %v", err)
		}
		fmt.Printf("Hyperlink updated for %s\n", svc.Name)

	case "delete":
		svc := mustGetService(db, nameArg(args[1:], "service delete NAME"))
		if err := db.DeleteService(svc.ID); err != nil {
			log.Fatalf("Failed to delete service: %v", err)
		}
		fmt.Printf("Deleted %s\n", svc.Name)

	default:
		fmt.Printf("Unknown service subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runGroupCommand(db *store.Store, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: group list|show|create|set-uuid|delete ...")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		groups, err := db.ListGroups()
		if err != nil {
			log.Fatalf("Failed to list groups: %v", err)
		}
		for _, group := range groups {
			fmt.Printf("%s\t%s\n", group.Name, group.FullName)
		}

	case "show":
		group := mustGetGroup(db, nameArg(args[1:], "group show NAME"))
		fmt.Printf("name: %s\nuuid: %s\n", group.Name, group.UUID)

		services, err := db.GroupServices(group.ID)
		if err != nil {
			log.Fatalf("Failed to list services: %v", err)
		}
		for _, svc := range services {
			fmt.Printf("service: %s\n", svc.Name)
		}

	case "create":
		fs := flag.NewFlagSet("group create", flag.ExitOnError)
		name := fs.String("name", "", "Group name (appears in the DN)")
		fullName := fs.String("full-name", "", "Display name")
		fs.Parse(args[1:])
		if *name == "" {
			fmt.Println("Usage: group create -name NAME [-full-name NAME]")
			os.Exit(1)
		}

		group := &models.Group{Name: *name, FullName: *fullName}
		if err := db.CreateGroup(group); err != nil {
			log.Fatalf("Failed to create group: %v", err)
		}
		fmt.Printf("Created group %s (uuid %s)\n", group.Name, group.UUID)

	case "set-uuid":
		if len(args) < 3 {
			fmt.Println("Usage: group set-uuid NAME UUID")
			os.Exit(1)
		}
		group := mustGetGroup(db, args[1])
		if err := db.SetGroupUUID(group.ID, args[2]); err != nil {
			log.Fatalf("Failed to set UUID: %v", err)
		}
		fmt.Printf("UUID updated for %s\n", group.Name)

	case "delete":
		group := mustGetGroup(db, nameArg(args[1:], "group delete NAME"))
		if err := db.DeleteGroup(group.ID); err != nil {
			log.Fatalf("Failed to delete group: %v", err)
		}
		fmt.Printf("Deleted %s\n", group.Name)

	default:
		fmt.Printf("Unknown group subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runMemberCommand(db *store.Store, args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: member add-user-to-service|add-user-to-group|add-group-to-service A B")
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "add-user-to-service":
		user := mustGetUser(db, args[1])
		svc := mustGetService(db, args[2])
		err = db.AddUserToService(user.ID, svc.ID)
	case "add-user-to-group":
		user := mustGetUser(db, args[1])
		group := mustGetGroup(db, args[2])
		err = db.AddUserToGroup(user.ID, group.ID)
	case "add-group-to-service":
		group := mustGetGroup(db, args[1])
		svc := mustGetService(db, args[2])
		err = db.AddGroupToService(group.ID, svc.ID)
	case "remove-user-from-service":
		user := mustGetUser(db, args[1])
		svc := mustGetService(db, args[2])
		err = db.RemoveUserFromService(user.ID, svc.ID)
	case "remove-user-from-group":
		user := mustGetUser(db, args[1])
		group := mustGetGroup(db, args[2])
		err = db.RemoveUserFromGroup(user.ID, group.ID)
	case "remove-group-from-service":
		group := mustGetGroup(db, args[1])
		svc := mustGetService(db, args[2])
		err = db.RemoveGroupFromService(group.ID, svc.ID)
	default:
		fmt.Printf("Unknown member subcommand: %s\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to update membership: %v", err)
	}
	fmt.Println("Membership updated")
}

func lookupUser(db *store.Store, args []string) *models.User {
	if len(args) == 0 {
		fmt.Println("Missing username argument")
		os.Exit(1)
	}
	return mustGetUser(db, args[0])
}

func mustGetUser(db *store.Store, username string) *models.User {
	if username == "" {
		fmt.Println("Missing username argument")
		os.Exit(1)
	}
	user, err := db.GetUserByUsername(username)
	if err != nil {
		log.Fatalf("User %q: %v", username, err)
	}
	return user
}

func mustGetService(db *store.Store, name string) *models.Service {
	svc, err := db.GetServiceByName(name)
	if err != nil {
		log.Fatalf("Service %q: %v", name, err)
	}
	return svc
}

func mustGetGroup(db *store.Store, name string) *models.Group {
	group, err := db.GetGroupByName(name)
	if err != nil {
		log.Fatalf("Group %q: %v", name, err)
	}
	return group
}

func nameArg(args []string, usage string) string {
	if len(args) == 0 {
		fmt.Printf("Usage: %s\n", usage)
		os.Exit(1)
	}
	return args[0]
}

// promptSecret reads a secret from stdin. Reading a full line keeps this
// usable both interactively and when piped from a secret manager.
func promptSecret(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("Failed to read secret: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}
