package common

// Mode carries the two build-mode signals. It is resolved once (CLI flags,
// config file, LUX_ env) and handed to every step explicitly.
type Mode struct {
	Production bool `koanf:"production" yaml:"production"`
	HMR        bool `koanf:"hmr" yaml:"hmr"`
}

func (m Mode) String() string {
	name := "development"
	if m.Production {
		name = "production"
	}
	if m.HMR {
		name += "+hot"
	}
	return name
}
