// token emite un JWT firmado con JWT_SECRET para probar la API sin módulo de login.
//
// Uso: go run ./cmd/token -user 1 -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/jwt"
)

func main() {
	userID := flag.Int64("user", 1, "id del usuario (debe existir y estar activo para registrar ventas)")
	role := flag.String("role", entity.RoleAdmin, "rol: admin | secretario")
	flag.Parse()

	if *role != entity.RoleAdmin && *role != entity.RoleSecretario {
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", *role)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
