package scan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// goFrameworks maps module path prefixes to display names.
var goFrameworks = map[string]string{
	"github.com/gin-gonic/gin": "Gin",
	"github.com/labstack/echo": "Echo",
	"github.com/gofiber/fiber": "Fiber",
	"github.com/go-chi/chi":    "Chi",
	"github.com/gorilla/mux":   "Gorilla Mux",
	"github.com/spf13/cobra":   "Cobra",
	"google.golang.org/grpc":   "gRPC",
	"gorm.io/gorm":             "GORM",
	"entgo.io/ent":             "Ent",
	"connectrpc.com/connect":   "Connect",
	"github.com/jackc/pgx":     "pgx",
	"k8s.io/client-go":         "Kubernetes client-go",
}

var nodeFrameworks = map[string]string{
	"express":       "Express",
	"fastify":       "Fastify",
	"koa":           "Koa",
	"@nestjs/core":  "NestJS",
	"next":          "Next.js",
	"react":         "React",
	"vue":           "Vue",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"mongoose":      "Mongoose",
	"sequelize":     "Sequelize",
	"prisma":        "Prisma",
}

var pythonFrameworks = map[string]string{
	"django":     "Django",
	"flask":      "Flask",
	"fastapi":    "FastAPI",
	"sqlalchemy": "SQLAlchemy",
	"celery":     "Celery",
	"crewai":     "CrewAI",
	"langchain":  "LangChain",
	"pydantic":   "Pydantic",
	"streamlit":  "Streamlit",
}

var jvmFrameworks = map[string]string{
	"spring-boot": "Spring Boot",
	"quarkus":     "Quarkus",
	"micronaut":   "Micronaut",
	"hibernate":   "Hibernate",
}

// DetectFrameworks inspects dependency manifests among files (relative to root)
// and returns the sorted set of recognized frameworks. Unparseable manifests
// are skipped.
func DetectFrameworks(root string, files []string) []string {
	found := make(map[string]bool)

	for _, rel := range files {
		base := path.Base(rel)
		var parse func([]byte) ([]string, error)
		switch base {
		case "go.mod":
			parse = func(data []byte) ([]string, error) { return goModFrameworks(rel, data) }
		case "package.json":
			parse = packageJSONFrameworks
		case "requirements.txt", "pyproject.toml":
			parse = func(data []byte) ([]string, error) { return keywordFrameworks(data, pythonFrameworks), nil }
		case "pom.xml", "build.gradle":
			parse = func(data []byte) ([]string, error) { return keywordFrameworks(data, jvmFrameworks), nil }
		default:
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			slog.Debug("skipping unreadable manifest", "file", rel, "error", err)
			continue
		}
		names, err := parse(data)
		if err != nil {
			slog.Debug("skipping malformed manifest", "file", rel, "error", err)
			continue
		}
		for _, n := range names {
			found[n] = true
		}
	}

	out := make([]string, 0, len(found))
	for n := range found {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func goModFrameworks(rel string, data []byte) ([]string, error) {
	f, err := modfile.Parse(rel, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}

	var names []string
	for _, req := range f.Require {
		for prefix, name := range goFrameworks {
			if req.Mod.Path == prefix || strings.HasPrefix(req.Mod.Path, prefix+"/") {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func packageJSONFrameworks(data []byte) ([]string, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}

	var names []string
	for dep, name := range nodeFrameworks {
		_, inDeps := pkg.Dependencies[dep]
		_, inDev := pkg.DevDependencies[dep]
		if inDeps || inDev {
			names = append(names, name)
		}
	}
	return names, nil
}

// keywordFrameworks is a loose match for manifests without a convenient parser.
func keywordFrameworks(data []byte, table map[string]string) []string {
	content := strings.ToLower(string(data))
	var names []string
	for kw, name := range table {
		if strings.Contains(content, kw) {
			names = append(names, name)
		}
	}
	return names
}
