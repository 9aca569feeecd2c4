package ecs

import (
	"reflect"
	"sort"
)

// WorldStats is a snapshot of world occupancy.
type WorldStats struct {
	EntityCount    int
	MaxEntities    int
	Components     []ComponentStats
	Systems        []SystemInfo
	SingletonTypes []string
}

type ComponentStats struct {
	Type  ComponentType
	Name  string
	Count int
}

type SystemInfo struct {
	Name        string
	Signature   Signature
	EntityCount int
}

// CollectStats gathers counts for every registered component type, system
// and singleton.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount: w.entities.LivingCount(),
		MaxEntities: w.entities.MaxEntities(),
	}

	for i := 0; i < w.components.Count(); i++ {
		t := ComponentType(i)
		stats.Components = append(stats.Components, ComponentStats{
			Type:  t,
			Name:  w.components.NameOf(t),
			Count: w.components.Size(t),
		})
	}

	for _, entry := range w.systems.entries {
		stats.Systems = append(stats.Systems, SystemInfo{
			Name:        entry.name,
			Signature:   entry.signature,
			EntityCount: entry.system.Entities().Len(),
		})
	}

	for typ := range w.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, typeLabel(typ))
	}
	sort.Strings(stats.SingletonTypes)
	return stats
}

func typeLabel(typ reflect.Type) string {
	if typ.Name() != "" {
		return typ.Name()
	}
	return typ.String()
}

// Singletons returns pointers to every singleton value, keyed by type name.
func (w *World) Singletons() map[string]any {
	out := make(map[string]any, len(w.singletons))
	for typ, v := range w.singletons {
		out[typeLabel(typ)] = v
	}
	return out
}
