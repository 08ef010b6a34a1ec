// Package catalog loads the read-only walkthrough content: stage texts,
// offers, tasks, principles and chaining steps. Content is authored in YAML,
// validated against an embedded JSON schema and then decoded into models.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

//go:embed catalog.yaml
var defaultContent []byte

//go:embed catalog.schema.json
var schemaSource string

// ErrInvalidCatalog is returned when content fails schema or consistency checks.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the immutable content shared by every session.
type Catalog struct {
	Stages        map[models.Stage]models.StageContent `json:"stages" yaml:"stages"`
	Offers        []models.Offer                       `json:"offers" yaml:"offers"`
	Tasks         []models.Task                        `json:"tasks" yaml:"tasks"`
	Principles    []models.Principle                   `json:"principles" yaml:"principles"`
	Steps         []models.ChainingStep                `json:"steps" yaml:"steps"`
	BasicPrompt   models.BasicPromptExample            `json:"basic_prompt" yaml:"basic_prompt"`
	Methodologies []models.Methodology                 `json:"methodologies" yaml:"methodologies"`
	Closing       string                               `json:"closing" yaml:"closing"`
}

// Default returns the catalogue embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultContent)
}

// MustDefault is Default for callers that cannot recover from bad embedded content.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalogue from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML content and decodes it.
func Parse(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateSchema(data []byte) error {
	schema, err := jsonschema.CompileString("catalog.schema.json", schemaSource)
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: yaml: %v", ErrInvalidCatalog, err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: yaml to json: %v", ErrInvalidCatalog, err)
	}
	var doc interface{}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("%w: json: %v", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}

func (c *Catalog) check() error {
	for _, s := range stage.Order() {
		if _, ok := c.Stages[s]; !ok {
			return fmt.Errorf("%w: missing content for stage %s", ErrInvalidCatalog, s)
		}
	}

	offerIDs := make(map[int]struct{}, len(c.Offers))
	for _, offer := range c.Offers {
		if _, dup := offerIDs[offer.ID]; dup {
			return fmt.Errorf("%w: duplicate offer id %d", ErrInvalidCatalog, offer.ID)
		}
		offerIDs[offer.ID] = struct{}{}
	}

	taskIDs := make(map[string]struct{}, len(c.Tasks))
	orders := make(map[int]struct{}, len(c.Tasks))
	for _, task := range c.Tasks {
		if _, dup := taskIDs[task.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %q", ErrInvalidCatalog, task.ID)
		}
		taskIDs[task.ID] = struct{}{}
		if task.Order < 1 || task.Order > len(c.Tasks) {
			return fmt.Errorf("%w: task %q order %d out of range", ErrInvalidCatalog, task.ID, task.Order)
		}
		if _, dup := orders[task.Order]; dup {
			return fmt.Errorf("%w: task order %d used twice", ErrInvalidCatalog, task.Order)
		}
		orders[task.Order] = struct{}{}
	}

	for _, step := range c.Steps {
		choiceIDs := make(map[string]struct{}, len(step.EnhancementChoices))
		for _, choice := range step.EnhancementChoices {
			if _, dup := choiceIDs[choice.ID]; dup {
				return fmt.Errorf("%w: step %q repeats choice %q", ErrInvalidCatalog, step.ID, choice.ID)
			}
			choiceIDs[choice.ID] = struct{}{}
		}
	}
	return nil
}

// StageContent returns the title and description of s.
func (c *Catalog) StageContent(s models.Stage) models.StageContent {
	return c.Stages[s]
}

// Task looks up a task by id.
func (c *Catalog) Task(id string) (models.Task, bool) {
	for _, task := range c.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return models.Task{}, false
}

// TaskIDs lists task ids in catalogue order.
func (c *Catalog) TaskIDs() []string {
	ids := make([]string, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

// SortedTasks returns the tasks in canonical order, the reference answer of
// the sequencing exercise.
func (c *Catalog) SortedTasks() []models.Task {
	sorted := append([]models.Task(nil), c.Tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// Offer looks up an offer by id.
func (c *Catalog) Offer(id int) (models.Offer, bool) {
	for _, offer := range c.Offers {
		if offer.ID == id {
			return offer, true
		}
	}
	return models.Offer{}, false
}
