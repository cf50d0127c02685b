package fakes_test

import (
	"testing"

	"github.com/Maxwellism/browserfakes/fakes"
	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/proxy"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/stretchr/testify/suite"
)

type browserSuite struct {
	fakes.Suite
}

func TestBrowserSuite(t *testing.T) {
	suite.Run(t, &browserSuite{fakes.Suite{Fakes: fakes.Config{
		Navigator:    fakes.Override(object.Object{"userAgent": "SuiteAgent"}),
		LocalStorage: true,
	}}})
}

func (s *browserSuite) TestNavigatorOverride() {
	nav, ok := registry.LookupAs[*proxy.Service](s.Owner, fakes.KeyNavigator)
	s.Require().True(ok)
	s.Equal("SuiteAgent", nav.Get("userAgent"))
	nav.Set("userAgent", "written by a test")
}

func (s *browserSuite) TestStorageWrite() {
	local, ok := registry.LookupAs[*storage.Storage](s.Owner, fakes.KeyLocalStorage)
	s.Require().True(ok)
	s.Equal(0, local.Length(), "every test gets a fresh storage")
	s.Require().NoError(local.SetItem("written", "yes"))
}

func (s *browserSuite) TestStorageWriteAgain() {
	local, _ := registry.LookupAs[*storage.Storage](s.Owner, fakes.KeyLocalStorage)
	s.Equal(0, local.Length())
	s.Require().NoError(local.SetItem("written", "yes"))
}

func (s *browserSuite) TestOnlyConfiguredKeys() {
	s.Equal([]string{fakes.KeyLocalStorage, fakes.KeyNavigator}, s.Owner.Names())
}
