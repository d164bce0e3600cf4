package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/database"
	"github.com/uniattend/attendance-backend/internal/logger"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
	"github.com/uniattend/attendance-backend/internal/service"
	"github.com/uniattend/attendance-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup(cfg.MaxPhotoBytes)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	accounts := service.NewAccountService(cfg, repository.NewUserRepository(pool), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create or Reset User ===")

	// EUID
	fmt.Print("Enter EUID: ")
	euid, _ := reader.ReadString('\n')
	euid = strings.TrimSpace(euid)
	if !validator.Var(euid, "euid") {
		fmt.Println("Error: EUID must be three lowercase letters followed by four digits")
		return
	}

	// Role
	fmt.Print("Enter Role (student/professor, default professor): ")
	roleStr, _ := reader.ReadString('\n')
	role := model.Role(strings.ToLower(strings.TrimSpace(roleStr)))
	if role == "" {
		role = model.RoleProfessor
	}
	if !role.Valid() {
		fmt.Println("Error: Role must be student or professor")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	created, err := accounts.Provision(ctx, euid, role, password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to provision user")
	}

	if created {
		fmt.Printf("\nSuccess! %s '%s' created\n", role, euid)
	} else {
		fmt.Printf("\nSuccess! Password for %s '%s' reset\n", role, euid)
	}
}
