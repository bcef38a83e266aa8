package selector

// BuildContext is the immutable input of one resolution pass.
type BuildContext struct {
	Board          string   `json:"board,omitempty" yaml:"board,omitempty"`
	Frameworks     []string `json:"pioframework,omitempty" yaml:"pioframework,omitempty"`
	Targets        []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	UploadProtocol string   `json:"upload_protocol,omitempty" yaml:"upload_protocol,omitempty"`
	DebugTool      string   `json:"debug_tool,omitempty" yaml:"debug_tool,omitempty"`
	DebugSpeed     string   `json:"debug_speed,omitempty" yaml:"debug_speed,omitempty"`
}

// HasFramework reports whether the framework was requested. Names match
// exactly, as written in the project file.
func (c BuildContext) HasFramework(name string) bool {
	return contains(c.Frameworks, name)
}

// HasTarget reports whether any of the named build targets was requested.
func (c BuildContext) HasTarget(names ...string) bool {
	for _, name := range names {
		if contains(c.Targets, name) {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
