package pkgtable

import (
	"sort"
	"strings"
)

// Package describes one installable platform package.
type Package struct {
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	Version  string `yaml:"version" json:"version"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Script   string `yaml:"script,omitempty" json:"script,omitempty"`
}

// Table maps package names to their install records.
type Table map[string]Package

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for name, pkg := range t {
		out[name] = pkg
	}
	return out
}

// Has reports whether the named package is present.
func (t Table) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Require clears the optional flag of a package. Absent packages are ignored.
func (t Table) Require(name string) {
	pkg, ok := t[name]
	if !ok {
		return
	}
	pkg.Optional = false
	t[name] = pkg
}

// Pin overwrites the version requirement of a package. Absent packages are
// ignored.
func (t Table) Pin(name, version string) {
	pkg, ok := t[name]
	if !ok {
		return
	}
	pkg.Version = version
	t[name] = pkg
}

// Remove deletes a package from the table. Removing an absent package is a
// no-op.
func (t Table) Remove(name string) {
	delete(t, name)
}

// Names returns the package names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithPrefix returns the sorted names of packages starting with prefix.
func (t Table) WithPrefix(prefix string) []string {
	var names []string
	for _, name := range t.Names() {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

// Required returns the sorted names of packages that will be installed
// unconditionally.
func (t Table) Required() []string {
	var names []string
	for _, name := range t.Names() {
		if !t[name].Optional {
			names = append(names, name)
		}
	}
	return names
}

// Framework points a build framework at the package providing it.
type Framework struct {
	Package string `yaml:"package" json:"package"`
	Script  string `yaml:"script,omitempty" json:"script,omitempty"`
}

// Frameworks maps framework names (arduino, mbed, zephyr, ...) to their
// package pointers.
type Frameworks map[string]Framework

// Clone returns an independent copy.
func (f Frameworks) Clone() Frameworks {
	out := make(Frameworks, len(f))
	for name, fw := range f {
		out[name] = fw
	}
	return out
}
