// -------------------------------------------------------------------------
// Subject catalog: the closed set of subjects the application serves.
// Loaded once at startup from the embedded default or an external file.
// -------------------------------------------------------------------------

package subjects

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/models"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Subjects []models.Subject `yaml:"subjects"`
}

// Catalog holds the loaded subjects in file order. It is immutable after
// Load, so lookups need no locking.
type Catalog struct {
	subjects []models.Subject
	byName   map[string]int
}

// Load reads the subject catalog from path, or the embedded default catalog
// when path is empty.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	source := "embedded catalog"

	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read subject catalog %s: %w", path, err)
		}
		data = fileData
		source = path
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject catalog from %s: %w", source, err)
	}
	return catalog, nil
}

// Parse builds a catalog from raw YAML, rejecting empty catalogs, duplicate
// names, invalid templates, and subjects whose sanitized namespaces collide.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if len(file.Subjects) == 0 {
		return nil, fmt.Errorf("catalog contains no subjects")
	}

	catalog := &Catalog{
		subjects: file.Subjects,
		byName:   make(map[string]int, len(file.Subjects)),
	}

	namespaces := make(map[string]string, len(file.Subjects))
	for i := range catalog.subjects {
		subject := &catalog.subjects[i]

		if err := subject.Validate(); err != nil {
			return nil, err
		}

		if _, exists := catalog.byName[subject.Name]; exists {
			return nil, fmt.Errorf("duplicate subject %q", subject.Name)
		}
		catalog.byName[subject.Name] = i

		// Sanitization is not injective, so two subjects could share a
		// store directory. Catch that here, while the set is still closed.
		namespace := common.SanitizeNamespace(subject.Name)
		if other, exists := namespaces[namespace]; exists {
			return nil, fmt.Errorf("subjects %q and %q both sanitize to namespace %q", other, subject.Name, namespace)
		}
		namespaces[namespace] = subject.Name
	}

	return catalog, nil
}

// Get returns the subject with the given name.
func (c *Catalog) Get(name string) (*models.Subject, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownSubject, name)
	}
	subject := c.subjects[i]
	return &subject, nil
}

// Namespace returns the vector store namespace for the given subject name.
func (c *Catalog) Namespace(name string) (string, error) {
	if _, ok := c.byName[name]; !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownSubject, name)
	}
	return common.SanitizeNamespace(name), nil
}

// Names returns the subject names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.subjects))
	for i, subject := range c.subjects {
		names[i] = subject.Name
	}
	return names
}

// All returns the subjects in catalog order.
func (c *Catalog) All() []models.Subject {
	out := make([]models.Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Len returns the number of subjects in the catalog.
func (c *Catalog) Len() int {
	return len(c.subjects)
}
