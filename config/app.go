package config

import "time"

type App struct {
	Port           string        `env:"APP_PORT" default:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	AdminEmail     string        `env:"ADMIN_EMAIL" default:"admin@virtual-library.local"`
	ReportInterval time.Duration `env:"REPORT_INTERVAL" default:"168h"`
	Env            string        `env:"APP_ENV" default:"dev"`
}
