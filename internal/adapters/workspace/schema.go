package workspace

import (
	"encoding/xml"
	"time"
)

// Workfile represents the structure of the asmres.work.yaml file.
type Workfile struct {
	Version  string       `yaml:"version"`
	Projects []string     `yaml:"projects"`
	Packages string       `yaml:"packages"`
	Resolver *ResolverDTO `yaml:"resolver"`
}

// ResolverDTO represents the resolver section of the workspace file.
type ResolverDTO struct {
	Extensions       []string      `yaml:"extensions"`
	RecomputeTimeout time.Duration `yaml:"recompute_timeout"`
	ProbePaths       []string      `yaml:"probe_paths"`
}

// ProjectFile represents a YAML project file.
type ProjectFile struct {
	References []string `yaml:"references"`
}

// msbuildProject captures the binary references of an MSBuild project file.
type msbuildProject struct {
	XMLName    xml.Name           `xml:"Project"`
	ItemGroups []msbuildItemGroup `xml:"ItemGroup"`
}

type msbuildItemGroup struct {
	References []msbuildReference `xml:"Reference"`
}

type msbuildReference struct {
	Include  string `xml:"Include,attr"`
	HintPath string `xml:"HintPath"`
}
