// portalctl is a small terminal client of the exam portal. It keeps a local
// session file, mirrors the portal's login/logout flow and demonstrates the
// inactivity policy.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/config"
	"github.com/sgexamenes/examenes-api/internal/client/api"
	"github.com/sgexamenes/examenes-api/internal/client/idle"
	"github.com/sgexamenes/examenes-api/internal/client/session"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := helpers.NewLogger("portalctl", cfg.Env)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("no se pudo resolver el directorio del usuario: %v", err)
	}
	storage := session.NewFileStorage(filepath.Join(home, ".examenes", "sesion.json"))
	store := session.NewStore(api.New(cfg.PortalURL), storage, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, "uso: portalctl login <correo> <password>")
			os.Exit(2)
		}
		must(store.Inicializar(ctx), log)
		if err := store.Login(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("login: %v", err)
		}
		snap := store.Snapshot()
		fmt.Printf("sesión iniciada como %s %s <%s>\n", snap.Usuario.Nombre, snap.Usuario.Apellidos, snap.Usuario.Correo)

	case "perfil":
		must(store.Inicializar(ctx), log)
		snap := store.Snapshot()
		if snap.Estado != session.EstadoAutenticado {
			fmt.Println("sin sesión activa")
			os.Exit(1)
		}
		fmt.Printf("%s %s <%s> rol=%s\n", snap.Usuario.Nombre, snap.Usuario.Apellidos, snap.Usuario.Correo, snap.Usuario.Rol)

	case "logout":
		must(store.Inicializar(ctx), log)
		must(store.Logout(ctx), log)
		fmt.Println("sesión cerrada")

	case "watch":
		runWatch(ctx, cfg, store, log)

	default:
		usage()
		os.Exit(2)
	}
}

// runWatch keeps the session alive while the user types; any input line
// counts as activity, silence runs down the idle budget.
func runWatch(ctx context.Context, cfg *config.Config, store *session.Store, log *logrus.Logger) {
	must(store.Inicializar(ctx), log)
	if store.Snapshot().Estado != session.EstadoAutenticado {
		fmt.Println("sin sesión activa; use portalctl login")
		os.Exit(1)
	}

	store.Subscribe(func(s session.Snapshot) {
		if s.Estado == session.EstadoAnonimo {
			fmt.Println("\nsesión terminada")
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon := idle.NewMonitor(idle.Config{
		CheckInterval: cfg.IdleCheckInterval,
		Budget:        cfg.IdleBudget,
		WarnWindow:    cfg.IdleWarnWindow,
	}, func(remaining time.Duration) {
		fmt.Printf("\naviso: la sesión se cerrará en %s si no hay actividad\n", remaining.Round(time.Second))
	}, func(ctx context.Context) {
		_ = store.Logout(ctx)
		cancel()
	}, log)

	go mon.Run(ctx)

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			mon.Actividad()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
}

func must(err error, log *logrus.Logger) {
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `uso: portalctl <login|perfil|logout|watch> [args]

  login <correo> <password>  inicia sesión y la persiste
  perfil                     muestra la sesión persistida (revalidada)
  logout                     revoca y limpia la sesión
  watch                      mantiene la sesión con cierre por inactividad`)
}
