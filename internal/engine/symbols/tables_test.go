package symbols

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/engine/parser"
	"rfocxt/internal/shared/testutil"
)

func buildTables(t *testing.T, files map[string]string) *Tables {
	t.Helper()
	root := testutil.WriteTree(t, files)
	loader, err := parser.NewLoader(parser.NewParser(), 0)
	require.NoError(t, err)
	crate, err := modtree.NewResolver(loader, modtree.Options{}).Build("demo", []string{filepath.Join(root, "src", "lib.rs")})
	require.NoError(t, err)
	return Build(crate, nil)
}

const geometry = `
pub mod shapes;
pub mod api {
    pub use crate::shapes::Circle;
    pub use crate::shapes::*;
}
pub mod facade {
    pub use crate::api::*;
}

pub fn area_of(c: &shapes::Circle) -> f64 { c.area() }
`

const shapes = `
pub trait Area {
    fn area(&self) -> f64;
    fn doubled(&self) -> f64 { self.area() * 2.0 }
}

pub struct Radius(f64);
pub struct Circle { r: Radius }
pub type Meters = f64;

impl Circle {
    pub fn new(r: f64) -> Self { Circle { r: Radius(r) } }
    pub fn grow(&mut self) {}
}

impl Area for Circle {
    fn area(&self) -> f64 { 3.14 }
}
`

func geometryTables(t *testing.T) *Tables {
	return buildTables(t, map[string]string{
		"src/lib.rs":    geometry,
		"src/shapes.rs": shapes,
	})
}

func TestBuild_Functions(t *testing.T) {
	tables := geometryTables(t)

	free, ok := tables.Function("demo::area_of")
	require.True(t, ok)
	assert.Nil(t, free.Impl)
	assert.Equal(t, "", free.ContainerKey())

	grow, ok := tables.Function("demo::shapes::{impl#0}::grow")
	require.True(t, ok)
	require.NotNil(t, grow.Impl)
	assert.Empty(t, grow.Impl.Functions, "container copy must not carry members")
	assert.Equal(t, "demo::shapes::{impl#0}", grow.ContainerKey())
	assert.Equal(t, 1, grow.Index)
	assert.Equal(t, "demo::shapes::Circle", grow.Impl.Target.Canonical())

	doubled, ok := tables.Function("demo::shapes::Area::doubled")
	require.True(t, ok)
	require.NotNil(t, doubled.Trait)
	assert.Empty(t, doubled.Trait.Functions)
	assert.Empty(t, doubled.Trait.Required)

	area, ok := tables.Function("demo::shapes::{impl#1}::area")
	require.True(t, ok)
	assert.Equal(t, "demo::shapes::Area", area.Impl.Trait.Canonical())
}

func TestBuild_Types(t *testing.T) {
	tables := geometryTables(t)

	circle, ok := tables.Type("demo::shapes::Circle")
	require.True(t, ok)
	assert.Equal(t, []string{"demo::shapes::Radius"}, circle.FieldRefs())
	assert.Equal(t, []string{"demo::shapes::Area"}, circle.Traits)
	assert.Contains(t, circle.Source(), "pub struct Circle")

	trait, ok := tables.Type("demo::shapes::Area")
	require.True(t, ok)
	require.NotNil(t, trait.Trait)
	assert.Len(t, trait.Trait.Functions, 1, "the type table keeps the full trait")

	alias, ok := tables.Type("demo::shapes::Meters")
	require.True(t, ok)
	assert.NotNil(t, alias.Leaf)
	assert.Nil(t, alias.FieldRefs())

	_, ok = tables.Type("demo::shapes::Nope")
	assert.False(t, ok)
}

func TestBuild_Aliases(t *testing.T) {
	tables := geometryTables(t)

	assert.Equal(t, []string{"demo::shapes::{impl#0}::new"}, tables.Aliases("demo::shapes::Circle::new"))
	assert.Equal(t, []string{"demo::shapes::{impl#1}::area"}, tables.Aliases("demo::shapes::Circle::area"))

	assert.Equal(t, []string{"demo::shapes::Circle"}, tables.Aliases("demo::api::Circle"))
	assert.Contains(t, tables.Aliases("demo::api::Radius"), "demo::shapes::Radius")
	// facade re-exports api, which re-exports shapes.
	assert.Contains(t, tables.Aliases("demo::facade::Radius"), "demo::api::Radius")
	assert.Contains(t, tables.Aliases("demo::facade::Circle"), "demo::api::Circle")
	assert.Empty(t, tables.Aliases("demo::facade::Missing"))
}

func TestBuild_CollisionsLastWriteWins(t *testing.T) {
	tables := buildTables(t, map[string]string{
		"src/lib.rs": "pub struct Dup { a: u8 }\npub struct Dup { b: u8 }\n",
	})
	assert.Equal(t, 1, tables.Collisions)
	dup, ok := tables.Type("demo::Dup")
	require.True(t, ok)
	assert.Contains(t, dup.Source(), "b: u8")
}

func TestTargets_Sorted(t *testing.T) {
	tables := geometryTables(t)
	var got []string
	for _, e := range tables.Targets() {
		got = append(got, e.Canonical)
	}
	assert.Equal(t, []string{
		"demo::area_of",
		"demo::shapes::Area::doubled",
		"demo::shapes::{impl#0}::grow",
		"demo::shapes::{impl#0}::new",
		"demo::shapes::{impl#1}::area",
	}, got)
	assert.Contains(t, tables.ScopePaths(), "demo::facade")
}
