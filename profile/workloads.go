package main

import (
	"github.com/edwinsyarief/kizuna"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func bundles(n int) func(yield func(kizuna.Bundle2[comp1, comp2]) bool) {
	return func(yield func(kizuna.Bundle2[comp1, comp2]) bool) {
		for i := range n {
			if !yield(kizuna.NewBundle2(comp1{V: int64(i)}, comp2{V: 1, W: 1})) {
				return
			}
		}
	}
}

func runSpawn(rounds, iters, numEntities int) error {
	for range rounds {
		w := kizuna.NewWorld(kizuna.WithInitialCapacity(numEntities))
		entities := make([]kizuna.Entity, 0, numEntities)
		for range iters {
			entities = entities[:0]
			for i := range numEntities {
				e, err := w.Spawn(kizuna.NewBundle2(comp1{V: int64(i)}, comp2{V: 1}))
				if err != nil {
					return err
				}
				entities = append(entities, e)
			}
			for _, e := range entities {
				if err := w.Despawn(e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func runBatch(rounds, iters, numEntities int) error {
	for range rounds {
		w := kizuna.NewWorld(kizuna.WithInitialCapacity(numEntities))
		for range iters {
			batch, err := kizuna.SpawnBatch(w, numEntities, bundles(numEntities))
			if err != nil {
				return err
			}
			for range batch.All() {
			}
			if err := batch.Err(); err != nil {
				return err
			}
			if err := w.Clear(); err != nil {
				return err
			}
		}
	}
	return nil
}

func runBuild(rounds, iters, numEntities int) error {
	for range rounds {
		w := kizuna.NewWorld(kizuna.WithInitialCapacity(numEntities))
		b := kizuna.NewEntityBuilder()
		for range iters {
			for range numEntities {
				kizuna.Add(kizuna.Add(b, comp1{}), comp2{})
				if _, err := w.Spawn(b.Build()); err != nil {
					return err
				}
			}
			if err := w.Clear(); err != nil {
				return err
			}
		}
	}
	return nil
}

func runIterate(rounds, iters, numEntities int) error {
	for range rounds {
		w := kizuna.NewWorld(kizuna.WithInitialCapacity(numEntities))
		batch, err := kizuna.SpawnBatch(w, numEntities, bundles(numEntities))
		if err != nil {
			return err
		}
		for range batch.All() {
		}
		for range iters {
			query, err := kizuna.NewQuery2[comp1, comp2](w, kizuna.AccessWrite, kizuna.AccessRead)
			if err != nil {
				return err
			}
			for query.Next() {
				c1, c2 := query.Get()
				c1.V += c2.V
				c1.W += c2.W
			}
		}
	}
	return nil
}

func runClone(rounds, iters, numEntities int) error {
	reg := kizuna.NewCloneRegistry()
	kizuna.Register[comp1](reg)
	kizuna.Register[comp2](reg)
	for range rounds {
		w := kizuna.NewWorld(kizuna.WithInitialCapacity(numEntities))
		batch, err := kizuna.SpawnBatch(w, numEntities, bundles(numEntities))
		if err != nil {
			return err
		}
		for range batch.All() {
		}
		for i := range iters {
			cfg := kizuna.CloneConfig{Mode: kizuna.CloneBulk}
			if i%2 == 1 {
				cfg.Mode = kizuna.ClonePreserveIDs
			}
			if _, err := w.CloneWith(reg, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}
