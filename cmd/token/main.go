// Command token mints a bearer token for the API using JWT_SECRET_KEY.
//
//	go run ./cmd/token -sub clerk-7 -role clerk
package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"casefiles/internal/auth"
	"casefiles/internal/config"
	"casefiles/internal/model"
)

func main() {
	sub := flag.String("sub", "", "user id placed in the sub claim")
	role := flag.String("role", string(model.RoleClerk), "judge, clerk or admin")
	flag.Parse()

	id := model.Identity{UserID: *sub, Role: model.Role(*role)}
	if id.UserID == "" || !id.Role.Valid() {
		flag.Usage()
		os.Exit(2)
	}

	m, err := auth.NewManager(config.Load().Auth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	token, err := m.GenerateToken(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
