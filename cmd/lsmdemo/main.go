package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dd0wney/cluso-lsm/pkg/lsm"
)

func main() {
	dataDir := "./data/lsmdemo"
	os.RemoveAll(dataDir)

	fmt.Println("Opening LSM engine...")
	tree, err := lsm.Open(lsm.EngineConfig{
		DataDir:             dataDir,
		MaxMemtableSize:     16,
		L0CompactionTrigger: 64,
	})
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer tree.Close()

	fmt.Printf("Engine %s ready\n", tree.EngineID())

	fmt.Println("\nWriting 200 entries...")
	for i := 0; i < 200; i++ {
		key := []byte(fmt.Sprintf("key%04d", i))
		value := []byte(fmt.Sprintf("value%04d", i))
		if err := tree.Put(key, value); err != nil {
			log.Fatalf("put: %v", err)
		}
	}

	fmt.Println("\nReading back a sample...")
	for _, i := range []int{0, 50, 100, 150, 199} {
		key := []byte(fmt.Sprintf("key%04d", i))
		if v, ok, err := tree.Get(key); err != nil {
			log.Fatalf("get: %v", err)
		} else if ok {
			fmt.Printf("  %s = %s\n", key, v)
		} else {
			fmt.Printf("  %s = NOT FOUND\n", key)
		}
	}

	fmt.Println("\nLevel occupancy:")
	for i := 0; i < tree.Levels(); i++ {
		size := tree.LevelSize(i)
		if size == 0 && tree.LevelState(i).String() == "empty" {
			continue
		}
		fmt.Printf("  level %d: %d entries (%s)\n", i, size, tree.LevelState(i))
	}

	fmt.Println("\nForcing a compaction of level 0...")
	if err := tree.ForceCompaction(0); err != nil {
		log.Fatalf("force compaction: %v", err)
	}
	fmt.Printf("  level 0: %d entries\n", tree.LevelSize(0))
	fmt.Printf("  level 1: %d entries\n", tree.LevelSize(1))

	fmt.Println("\nDone.")
}
