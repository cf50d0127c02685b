package fakes

import (
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

// Suite installs Fakes before every test and removes them afterwards. Embed it
// and set Fakes (and optionally Opts) before running the suite:
//
//	type CheckoutSuite struct{ fakes.Suite }
//
//	func TestCheckout(t *testing.T) {
//		suite.Run(t, &CheckoutSuite{fakes.Suite{Fakes: fakes.Config{LocalStorage: true}}})
//	}
type Suite struct {
	suite.Suite

	Fakes Config
	Opts  []Opt

	// Owner and Harness are rebuilt for every test.
	Owner   *registry.Container
	Harness *Harness
}

func (s *Suite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.Owner = registry.New(registry.WithLogger(logger))
	opts := append([]Opt{WithLogger(logger)}, s.Opts...)
	h, err := Install(s.Owner, s.Fakes, opts...)
	s.Require().NoError(err, "install browser fakes")
	s.Harness = h
}

func (s *Suite) TearDownTest() {
	if s.Harness != nil {
		s.Harness.Teardown()
		s.Harness = nil
	}
}
