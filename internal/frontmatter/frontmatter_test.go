package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Example Guide\n---\n# Title\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Example Guide\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: broken\n# Title\n")

	_, _, had, _, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: win\r\n---\r\n# Title\r\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: win\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestParseMeta_FullFrontmatter_DecodesTypedFields(t *testing.T) {
	input := []byte(`---
title: Example Guide
description: A guide.
sidebar:
  label: Guide
  order: 2
  hidden: false
draft: false
tags:
  - onboarding
---
Body text.
`)

	meta, body, err := ParseMeta(input)
	require.NoError(t, err)
	require.Equal(t, "Example Guide", meta.Title)
	require.Equal(t, "A guide.", meta.Description)
	require.Equal(t, "Guide", meta.Sidebar.Label)
	require.True(t, meta.HasExplicitOrder())
	require.Equal(t, 2, *meta.Sidebar.Order)
	require.False(t, meta.Sidebar.Hidden)
	require.False(t, meta.Draft)
	require.Equal(t, []byte("Body text.\n"), body)

	// Typed fields are removed from Rest, unknown fields survive.
	require.NotContains(t, meta.Rest, "title")
	require.Contains(t, meta.Rest, "tags")
}

func TestParseMeta_NoFrontmatter_ZeroMeta(t *testing.T) {
	input := []byte("Just a body.\n")

	meta, body, err := ParseMeta(input)
	require.NoError(t, err)
	require.Empty(t, meta.Title)
	require.False(t, meta.HasExplicitOrder())
	require.Equal(t, input, body)
}

func TestParseMeta_OrderZero_IsExplicit(t *testing.T) {
	input := []byte("---\nsidebar:\n  order: 0\n---\nbody\n")

	meta, _, err := ParseMeta(input)
	require.NoError(t, err)
	require.True(t, meta.HasExplicitOrder())
	require.Equal(t, 0, *meta.Sidebar.Order)
}
