package modtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolveLib = `
pub mod model;
pub mod shapes;
mod prelude;

use model::Point as P;
use crate::shapes::Circle;
use self::shapes::Square;
use prelude::*;
use std::collections::HashMap;

pub struct Local;
pub struct Wrapper { p: P, c: Circle, m: HashMap<u8, Local>, x: Unknown }

impl P {
    pub fn origin() -> Self { todo!() }
}

impl shapes::Area for Square {}

fn scoped() {
    struct Inner;
    impl Inner {}
    impl Circle {}
}
`

func resolveCrate(t *testing.T) *Crate {
	t.Helper()
	return mustBuild(t, map[string]string{
		"src/lib.rs":     resolveLib,
		"src/model.rs":   "pub struct Point;\npub struct Circle;\n",
		"src/shapes.rs":  "pub struct Circle;\npub struct Square;\npub trait Area {}\nuse super::model::Point;\npub mod sub { pub struct Leaf; }\n",
		"src/prelude.rs": "pub struct Tool;\npub fn helper() {}\n",
	}, "src/lib.rs")
}

func TestResolveName_Precedence(t *testing.T) {
	c := resolveCrate(t)
	root := c.Roots[0]

	cases := map[string]string{
		"Local":               "demo::Local",
		"P":                   "demo::model::Point",
		"Circle":              "demo::shapes::Circle",
		"Square":              "demo::shapes::Square",
		"Tool":                "demo::prelude::Tool",
		"HashMap":             "std::collections::HashMap",
		"model::Point":        "demo::model::Point",
		"crate::shapes::Area": "demo::shapes::Area",
		"self::Local":         "demo::Local",
		"shapes::sub::Leaf":   "demo::shapes::sub::Leaf",
		"model::Point<T>":     "demo::model::Point",
	}
	for raw, want := range cases {
		got := c.ResolveName(root, raw)
		assert.True(t, got.IsResolved(), raw)
		assert.Equal(t, want, got.Canonical(), raw)
		assert.Equal(t, raw, got.Raw)
	}

	for _, raw := range []string{"Nope", "Self::X", "", "Point"} {
		assert.False(t, c.ResolveName(root, raw).IsResolved(), raw)
	}
}

func TestResolveName_SuperAndNestedScopes(t *testing.T) {
	c := resolveCrate(t)
	shapes := scope(t, c, "demo::shapes")

	assert.Equal(t, "demo::model::Point", c.ResolveName(shapes.ID, "Point").Canonical())
	assert.Equal(t, "demo::model::Circle", c.ResolveName(shapes.ID, "super::model::Circle").Canonical())
	assert.Equal(t, "demo::shapes::Circle", c.ResolveName(shapes.ID, "Circle").Canonical())

	sub := scope(t, c, "demo::shapes::sub")
	assert.Equal(t, "demo::Local", c.ResolveName(sub.ID, "super::super::Local").Canonical())
	assert.False(t, c.ResolveName(c.Roots[0], "super::Local").IsResolved())

	fn := scope(t, c, "demo::scoped")
	assert.Equal(t, "demo::scoped::Inner", c.ResolveName(fn.ID, "Inner").Canonical())
	// Function scopes see the enclosing module.
	assert.Equal(t, "demo::shapes::Circle", c.ResolveName(fn.ID, "Circle").Canonical())
	assert.Equal(t, "demo::Local", c.ResolveName(fn.ID, "self::Local").Canonical())
}

func TestResolveAll_ImplsAndFields(t *testing.T) {
	c := resolveCrate(t)
	lib := c.Nodes[c.Roots[0]]

	require.Len(t, lib.Context.Impls, 2)
	assert.Equal(t, "demo::model::Point", lib.Context.Impls[0].Target.Canonical())
	assert.False(t, lib.Context.Impls[0].Trait.IsResolved())
	assert.Equal(t, "demo::shapes::Square", lib.Context.Impls[1].Target.Canonical())
	assert.Equal(t, "demo::shapes::Area", lib.Context.Impls[1].Trait.Canonical())

	wrapper := lib.Context.Structs[1]
	var refs []string
	for _, ref := range wrapper.FieldRefs {
		refs = append(refs, ref.Canonical())
	}
	assert.Equal(t, []string{"demo::model::Point", "demo::shapes::Circle", "std::collections::HashMap", "demo::Local", ""}, refs)

	fn := scope(t, c, "demo::scoped")
	require.Len(t, fn.Context.Impls, 2)
	assert.Equal(t, "demo::scoped::Inner", fn.Context.Impls[0].Target.Canonical())
	assert.Equal(t, "demo::scoped::{impl#1}", fn.Context.Impls[1].Key)
	assert.Equal(t, "demo::shapes::Circle", fn.Context.Impls[1].Target.Canonical())
}

func TestResolveAll_UseCanonical(t *testing.T) {
	c := resolveCrate(t)
	lib := c.Nodes[c.Roots[0]]

	got := map[string]string{}
	for _, u := range lib.Context.Uses {
		got[u.Local] = u.Canonical.String()
	}
	assert.Equal(t, "demo::model::Point", got["P"])
	assert.Equal(t, "demo::shapes::Circle", got["Circle"])
	assert.Equal(t, "demo::shapes::Square", got["Square"])
	assert.Equal(t, "demo::prelude", got["*"])
	assert.Equal(t, "std::collections::HashMap", got["HashMap"])
}
