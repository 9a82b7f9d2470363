package testutil

// WithScenario adds the three-registrar dataset: one self-hosted registrar
// with 100 domains and two Tucows-hosted registrars with 50 and 30.
func (b *Builder) WithScenario() *Builder {
	return b.
		WithRegistrar(1, "Example Registrar", "rdap.example-registrar.com",
			Category("registrar"), Domains(100)).
		WithRegistrar(2, "Tucows Domains Inc.", "rdap.tucows.com",
			Category("gateway"), Domains(50)).
		WithRegistrar(3, "Ascio Technologies", "rdap.tucows.com",
			Category("subsidiary"), Domains(30))
}
