package INSFV

import (
	"fmt"
	"sort"

	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"github.com/notargets/gofvns/types"
)

// BoundaryCategory is the momentum treatment of a face
type BoundaryCategory uint8

const (
	Interior BoundaryCategory = iota
	Flow
	FullyDevelopedFlow
	NoSlipWall
	SlipWall
	Symmetry
)

func (bc BoundaryCategory) String() string {
	return [...]string{"Interior", "Flow", "FullyDevelopedFlow", "NoSlipWall", "SlipWall", "Symmetry"}[bc]
}

func (bc BoundaryCategory) IsFlow() bool { return bc == Flow || bc == FullyDevelopedFlow }

// BoundaryClassification maps marker tags to categories, it is immutable once built
type BoundaryClassification struct {
	categories map[int]BoundaryCategory
}

/*
ClassifyBoundaries buckets each tag by the conditions applied on it. A tag carrying any flow
condition is a flow boundary, fully developed when all of its flow conditions are. Tags with no
momentum condition stay unclassified.
*/
func ClassifyBoundaries(tags []int, bcs *fv.Warehouse) (bcl *BoundaryClassification, err error) {
	bcl = &BoundaryClassification{categories: make(map[int]BoundaryCategory)}
	for _, tag := range tags {
		var found []BoundaryCategory
		if flow := bcs.Query(tag, types.BCFLAG.IsFlow); len(flow) != 0 {
			var nFD int
			for _, bc := range flow {
				if bc.Type.IsFullyDeveloped() {
					nFD++
				}
			}
			switch nFD {
			case 0:
				found = append(found, Flow)
			case len(flow):
				found = append(found, FullyDevelopedFlow)
			default:
				return nil, fmt.Errorf("%w: boundary %d mixes fully developed and developing flow conditions",
					ErrConfiguration, tag)
			}
		}
		for _, c := range []struct {
			flag types.BCFLAG
			cat  BoundaryCategory
		}{
			{types.BC_NoSlipWall, NoSlipWall},
			{types.BC_SlipWall, SlipWall},
			{types.BC_Symmetry, Symmetry},
		} {
			flag := c.flag
			if len(bcs.Query(tag, func(bf types.BCFLAG) bool { return bf == flag })) != 0 {
				found = append(found, c.cat)
			}
		}
		switch len(found) {
		case 0:
		case 1:
			bcl.categories[tag] = found[0]
		default:
			return nil, fmt.Errorf("%w: boundary %d has conflicting categories %v", ErrConfiguration, tag, found)
		}
	}
	return
}

func (bcl *BoundaryClassification) Classify(tag int) (cat BoundaryCategory, ok bool) {
	cat, ok = bcl.categories[tag]
	return
}

func (bcl *BoundaryClassification) IsFlow(tag int) bool {
	cat, ok := bcl.categories[tag]
	return ok && cat.IsFlow()
}

// FaceCategory resolves a face, at corners the first tag with a category wins
func (bcl *BoundaryClassification) FaceCategory(fi *mesh.FaceInfo) (cat BoundaryCategory, tag int, ok bool) {
	if !fi.IsBoundary() {
		return Interior, -1, true
	}
	for _, tag = range fi.BoundaryIDs {
		if cat, ok = bcl.categories[tag]; ok {
			return
		}
	}
	return 0, -1, false
}

// Tags lists the classified tags in ascending order
func (bcl *BoundaryClassification) Tags() (tags []int) {
	for tag := range bcl.categories {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return
}
