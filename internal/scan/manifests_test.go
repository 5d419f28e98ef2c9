package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFrameworks(t *testing.T) {
	root := t.TempDir()
	write(t, root, "svc/go.mod", `module example.com/svc

go 1.22

require (
	github.com/gin-gonic/gin v1.9.1
	github.com/spf13/cobra v1.8.0
	gorm.io/gorm v1.25.0
)
`)
	write(t, root, "web/package.json", `{"dependencies": {"express": "^4.0.0"}, "devDependencies": {"react": "18"}}`)
	write(t, root, "requirements.txt", "Flask==2.0\nSQLAlchemy>=1.4\n")
	write(t, root, "java/pom.xml", "<artifactId>spring-boot-starter-web</artifactId>")

	files := []string{"svc/go.mod", "web/package.json", "requirements.txt", "java/pom.xml", "README.md"}
	assert.Equal(t,
		[]string{"Cobra", "Express", "Flask", "GORM", "Gin", "React", "SQLAlchemy", "Spring Boot"},
		DetectFrameworks(root, files))
}

func TestDetectFrameworks_MalformedManifestsSkipped(t *testing.T) {
	root := t.TempDir()
	write(t, root, "go.mod", "this is not a go.mod (")
	write(t, root, "package.json", "{not json")

	assert.Empty(t, DetectFrameworks(root, []string{"go.mod", "package.json", "missing/package.json"}))
}
