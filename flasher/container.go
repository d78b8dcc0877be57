package flasher

import (
	"fmt"

	"github.com/moffa90/go-ws63flash/fwpkg"
)

// ContainerTargets loads the loaderboot and the partitions to flash from
// img. Every name in names must exist in the container; when names is
// empty all ordinary partitions are selected. Partitions come back in
// table order.
func ContainerTargets(img *fwpkg.Image, names []string) (Target, []Target, error) {
	for _, name := range names {
		if img.Find(name) == nil {
			return Target{}, nil, &PartitionNotFoundError{Name: name}
		}
	}

	loader, err := LoaderTarget(img)
	if err != nil {
		return Target{}, nil, err
	}

	var parts []Target
	for _, p := range img.Partitions {
		if !Selected(p, names) {
			continue
		}
		t, err := partitionTarget(img, p)
		if err != nil {
			return Target{}, nil, err
		}
		parts = append(parts, t)
	}
	return loader, parts, nil
}

// LoaderTarget loads the loaderboot of img.
func LoaderTarget(img *fwpkg.Image) (Target, error) {
	lb, err := img.LoaderBoot()
	if err != nil {
		return Target{}, err
	}
	return partitionTarget(img, lb)
}

// Selected reports whether p is flashed for the given name filter.
func Selected(p *fwpkg.Partition, names []string) bool {
	if p.Kind != fwpkg.KindNormal {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if p.Name == name {
			return true
		}
	}
	return false
}

func partitionTarget(img *fwpkg.Image, p *fwpkg.Partition) (Target, error) {
	data, err := img.ReadPartition(p)
	if err != nil {
		return Target{}, fmt.Errorf("load %s: %w", p.Name, err)
	}
	return Target{Name: p.Name, Address: p.BurnAddress, Data: data}, nil
}
