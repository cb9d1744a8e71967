package schema

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// User schema files let a project declare symbols its imports define, in
// TOML:
//
//	[properties.DeployTarget]
//	kind = "String"
//	values = ["staging", "production"]
//
//	[items.ApiSpec]
//	kind = "File"
//	[items.ApiSpec.metadata.Format]
//	values = ["openapi", "grpc"]
//
//	[tasks.PushArtifacts.parameters.Source]
//	kind = "File"
//	required = true
type userSchemaFile struct {
	Properties map[string]userSymbol `toml:"properties"`
	Items      map[string]userItem   `toml:"items"`
	Tasks      map[string]userTask   `toml:"tasks"`
	Targets    map[string]userSymbol `toml:"targets"`
	Metadata   map[string]userSymbol `toml:"metadata"`
}

type userSymbol struct {
	Description  string   `toml:"description"`
	Kind         string   `toml:"kind"`
	List         bool     `toml:"list"`
	Literal      bool     `toml:"literal"`
	Required     bool     `toml:"required"`
	Output       bool     `toml:"output"`
	Default      *string  `toml:"default"`
	Deprecated   string   `toml:"deprecated"`
	Values       []string `toml:"values"`
	AllowUnknown bool     `toml:"allowUnknown"`
}

type userItem struct {
	userSymbol
	Metadata map[string]userSymbol `toml:"metadata"`
}

type userTask struct {
	userSymbol
	Parameters map[string]userSymbol `toml:"parameters"`
}

// LoadUserSchema decodes a TOML schema extension file into a provider.
func LoadUserSchema(path string) (*StaticProvider, error) {
	var file userSchemaFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load user schema %s: %w", path, err)
	}
	return buildUserProvider(&file)
}

// ParseUserSchema decodes TOML schema text; used by tests and embedders.
func ParseUserSchema(data string) (*StaticProvider, error) {
	var file userSchemaFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("parse user schema: %w", err)
	}
	return buildUserProvider(&file)
}

func buildUserProvider(file *userSchemaFile) (*StaticProvider, error) {
	p := NewStaticProvider()
	for name, u := range file.Properties {
		sym, err := u.symbol(name)
		if err != nil {
			return nil, err
		}
		p.AddProperty(sym)
	}
	for name, u := range file.Items {
		sym, err := u.userSymbol.symbol(name)
		if err != nil {
			return nil, err
		}
		p.AddItem(sym)
		for mname, mu := range u.Metadata {
			msym, err := mu.symbol(mname)
			if err != nil {
				return nil, err
			}
			p.AddMetadata(name, msym)
		}
	}
	for name, u := range file.Metadata {
		sym, err := u.symbol(name)
		if err != nil {
			return nil, err
		}
		p.AddMetadata("", sym)
	}
	for name, u := range file.Tasks {
		sym, err := u.userSymbol.symbol(name)
		if err != nil {
			return nil, err
		}
		sym.Parameters = make(map[string]*Symbol, len(u.Parameters))
		for pname, pu := range u.Parameters {
			psym, err := pu.symbol(pname)
			if err != nil {
				return nil, err
			}
			psym.SymKind = SymTaskParameter
			psym.IsOutput = pu.Output
			sym.Parameters[FoldName(pname)] = psym
		}
		p.AddTask(sym)
	}
	for name, u := range file.Targets {
		sym, err := u.symbol(name)
		if err != nil {
			return nil, err
		}
		p.AddTarget(sym)
	}
	return p, nil
}

func (u userSymbol) symbol(name string) (*Symbol, error) {
	kind := KindData
	if u.Kind != "" {
		k, ok := kindByName[u.Kind]
		if !ok {
			return nil, fmt.Errorf("symbol %s: unknown value kind %q", name, u.Kind)
		}
		kind = k
	}
	if u.List {
		kind = kind.List()
	}
	if u.Literal {
		kind = kind.Literal()
	}
	sym := &Symbol{
		Name:        name,
		Description: u.Description,
		Kind:        kind,
		Required:    u.Required,
		Deprecation: u.Deprecated,
	}
	if u.Default != nil {
		sym.DefaultValue = *u.Default
		sym.HasDefault = true
	}
	if len(u.Values) > 0 {
		sym.CustomType = &CustomType{
			Values:       u.Values,
			AllowUnknown: u.AllowUnknown,
		}
	}
	return sym, nil
}
