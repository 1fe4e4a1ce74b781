package classifier

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

//go:embed content.yaml
var contentYAML []byte

// MetricContent is the static presentation content for one metric: a
// human title, one description per status, and a fixed remediation list.
type MetricContent struct {
	Title        string            `yaml:"title"`
	Descriptions map[string]string `yaml:"descriptions"`
	Remediation  []string          `yaml:"remediation"`
}

// Description returns the variant for the given status.
func (c MetricContent) Description(s model.Status) string {
	return c.Descriptions[string(s)]
}

var contentTable map[model.MetricKey]MetricContent

func init() {
	var table map[model.MetricKey]MetricContent
	if err := yaml.Unmarshal(contentYAML, &table); err != nil {
		panic(fmt.Sprintf("classifier: parse content table: %v", err))
	}
	for _, key := range model.AllMetricKeys {
		entry, ok := table[key]
		if !ok {
			panic(fmt.Sprintf("classifier: content table missing %s", key))
		}
		for _, status := range []model.Status{model.StatusGood, model.StatusAverage, model.StatusPoor} {
			if entry.Descriptions[string(status)] == "" {
				panic(fmt.Sprintf("classifier: content table %s missing %s description", key, status))
			}
		}
	}
	contentTable = table
}

// Content returns the presentation content for a metric. Asking for an
// unknown key is a programmer error.
func Content(key model.MetricKey) MetricContent {
	c, ok := contentTable[key]
	if !ok {
		panic(fmt.Sprintf("classifier: unknown metric key %q", key))
	}
	return c
}
