package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   gRPC bind address
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k int      verification code validity, minutes
//	-w int      resend cool-down, seconds
//	-R string   Redis address for the resend gate
//	-M string   mail provider (log|ses)
//	-f string   mail sender address
//	-g string   AWS region
//	-e string   AWS endpoint override
//	-l string   log level
//	-L string   log format (json|text|console)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-t", "-r", "-k", "-w", "-R", "-M", "-f", "-g", "-e", "-l", "-L",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	codeTTL := fs.Int("k", int(config.VerificationCodeTTL.Minutes()), "verification code validity (in minutes)")
	cooldown := fs.Int("w", int(config.ResendCooldown.Seconds()), "resend cool-down (in seconds)")

	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	fs.StringVar(&config.MailProvider, "M", config.MailProvider, "mail provider (log|ses)")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail sender address")
	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.AWSEndpoint, "e", config.AWSEndpoint, "AWS endpoint override")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "L", config.LogFormat, "log format (json|text|console)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// integer flags only override what was set explicitly, so sub-minute
	// values from the file or environment survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTTL) * time.Minute
		case "k":
			config.VerificationCodeTTL = time.Duration(*codeTTL) * time.Minute
		case "w":
			config.ResendCooldown = time.Duration(*cooldown) * time.Second
		}
	})
}
