package environment

import (
	"os"
	"strings"
)

var port = os.Getenv("PORT")

func GetPort() string {
	if port != "" {
		return port
	}
	return "8087"
}

var databasePath = os.Getenv("DATABASE_PATH")

func GetDatabasePath() string {
	// For local testing
	if databasePath != "" {
		return databasePath
	}
	return "./reelcut.db"
}

var mediaInfoBaseURL = os.Getenv("MEDIAINFO_BASE_URL")

// GetMediaInfoBaseURL returns the media probing service URL. Empty means the
// engine runs with a static in-memory provider.
func GetMediaInfoBaseURL() string {
	return mediaInfoBaseURL
}

var corsOrigins = os.Getenv("CORS_ORIGINS")

func GetCORSOrigins() []string {
	if corsOrigins == "" {
		return nil
	}
	return strings.Split(corsOrigins, ",")
}

var rudderWriteKey = os.Getenv("RUDDER_WRITE_KEY")

func GetRudderWriteKey() string {
	return rudderWriteKey
}

var rudderDataPlane = os.Getenv("RUDDER_DATA_PLANE_URL")

func GetRudderDataPlane() string {
	return rudderDataPlane
}
