package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

type fileCatalog struct {
	Ports  []filePort  `yaml:"ports"`
	Routes []fileRoute `yaml:"routes"`
}

type filePort struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Country string   `yaml:"country"`
	Region  string   `yaml:"region"`
	Lat     float64  `yaml:"lat"`
	Lon     float64  `yaml:"lon"`
	Hazards []string `yaml:"hazards"`
}

type fileRoute struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Ports    []string `yaml:"ports"`
	BaseCost float64  `yaml:"base_cost"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return FromYAML(data)
}

// FromYAML parses a YAML catalog document:
//
//	ports:
//	  - id: SGSIN
//	    name: Singapore
//	    country: SG
//	    region: Strait of Malacca
//	    lat: 1.26
//	    lon: 103.84
//	    hazards: [chokepoint]
//	routes:
//	  - id: oceania
//	    ports: [AUMEL, SGSIN]
//	    base_cost: 100000
func FromYAML(data []byte) (*Static, error) {
	var doc fileCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	ports := make([]model.Port, 0, len(doc.Ports))
	for _, fp := range doc.Ports {
		var hz model.Hazard
		for _, name := range fp.Hazards {
			flag, ok := model.ParseHazard(name)
			if !ok {
				return nil, weerrors.Invalid("ports", "port %q has unknown hazard %q", fp.ID, name)
			}
			hz |= flag
		}
		ports = append(ports, model.Port{
			ID:       fp.ID,
			Name:     fp.Name,
			Country:  fp.Country,
			Region:   fp.Region,
			Position: model.Coordinate{Lat: fp.Lat, Lon: fp.Lon},
			Hazards:  hz,
		})
	}

	routes := make([]model.Route, 0, len(doc.Routes))
	for _, fr := range doc.Routes {
		routes = append(routes, model.Route{
			ID:       fr.ID,
			Name:     fr.Name,
			PortIDs:  fr.Ports,
			BaseCost: fr.BaseCost,
		})
	}

	return New(ports, routes)
}
