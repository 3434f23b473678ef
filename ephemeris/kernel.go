// Package ephemeris provides the Source abstraction (spec §4.D, §6): a
// pluggable position/velocity provider keyed by BodyId and instant, with
// three concrete shapes — an always-valid approximate Keplerian source, a
// narrow-window precomputed-file source backed by a Chebyshev/DAF-SPK
// binary reader, and a composite dispatcher that picks among registered
// sources by body and time, preferring the narrower (higher-fidelity)
// window on overlap.
package ephemeris

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/anupshinde/solarcore/simerr"
)

const (
	recordLen = 1024
	secPerDay = 86400.0
)

// SegmentInfo describes one Chebyshev segment's coverage, the shape spec
// §6's segments() operation exposes.
type SegmentInfo struct {
	Target, Observer int
	StartSec, EndSec float64 // TDB seconds past J2000
	RecordType       int
}

// Kernel is the reader abstraction spec §6 names: "given (seconds past
// J2000, target, observer), return (pos, vel) or fail with OutOfRange".
// It is an opaque collaborator to everything above the ephemeris package;
// FileSource is the only caller.
type Kernel struct {
	segments []segment
	segMap   map[[2]int][]*segment
	chains   map[int][]chainLink
}

type chainLink struct {
	target int
	center int
}

type segment struct {
	target, center int
	dataType       int
	startSec       float64
	endSec         float64
	init           float64
	intLen         float64
	rsize          int
	n              int
	nCoeffs        int
	data           []float64
}

// SSB is the NAIF id of the Solar System Barycenter, the root of every
// chain.
const SSB = 0

// OpenKernel reads and parses a DAF/SPK binary ephemeris file. Only Type 2
// (position-only) and Type 3 (position+velocity) segments are supported,
// matching the narrow precomputed-file scope spec §4.D.2 describes.
func OpenKernel(path string) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simerr.NewIoError("opening kernel", err)
	}
	defer f.Close()

	fileRec := make([]byte, recordLen)
	if _, err := f.Read(fileRec); err != nil {
		return nil, simerr.NewIoError("reading file record", err)
	}

	locidw := string(fileRec[0:8])
	if locidw != "DAF/SPK " {
		return nil, simerr.NewIoError(fmt.Sprintf("not a DAF/SPK kernel: got %q", locidw), nil)
	}

	nd := int(binary.LittleEndian.Uint32(fileRec[8:12]))
	ni := int(binary.LittleEndian.Uint32(fileRec[12:16]))
	fward := int(binary.LittleEndian.Uint32(fileRec[76:80]))

	summaryDoubles := nd + (ni+1)/2
	summaryBytes := summaryDoubles * 8

	k := &Kernel{
		segMap: make(map[[2]int][]*segment),
		chains: make(map[int][]chainLink),
	}

	recNum := fward
	for recNum != 0 {
		offset := int64(recNum-1) * recordLen
		if _, err := f.Seek(offset, 0); err != nil {
			return nil, simerr.NewIoError("seeking summary record", err)
		}
		rec := make([]byte, recordLen)
		if _, err := f.Read(rec); err != nil {
			return nil, simerr.NewIoError("reading summary record", err)
		}

		nextRec := math.Float64frombits(binary.LittleEndian.Uint64(rec[0:8]))
		nSummaries := int(math.Float64frombits(binary.LittleEndian.Uint64(rec[16:24])))

		pos := 24
		for i := 0; i < nSummaries; i++ {
			summary := rec[pos : pos+summaryBytes]

			startSec := math.Float64frombits(binary.LittleEndian.Uint64(summary[0:8]))
			endSec := math.Float64frombits(binary.LittleEndian.Uint64(summary[8:16]))

			intOff := nd * 8
			target := int(int32(binary.LittleEndian.Uint32(summary[intOff:])))
			center := int(int32(binary.LittleEndian.Uint32(summary[intOff+4:])))
			dataType := int(int32(binary.LittleEndian.Uint32(summary[intOff+12:])))
			startI := int(int32(binary.LittleEndian.Uint32(summary[intOff+16:])))
			endI := int(int32(binary.LittleEndian.Uint32(summary[intOff+20:])))

			if dataType != 2 && dataType != 3 {
				return nil, simerr.NewIoError(fmt.Sprintf("unsupported segment type %d (target=%d, center=%d)", dataType, target, center), nil)
			}

			nWords := endI - startI + 1
			dataOffset := int64(startI-1) * 8
			if _, err := f.Seek(dataOffset, 0); err != nil {
				return nil, simerr.NewIoError("seeking segment data", err)
			}
			rawData := make([]byte, nWords*8)
			if _, err := f.Read(rawData); err != nil {
				return nil, simerr.NewIoError("reading segment data", err)
			}

			data := make([]float64, nWords)
			for j := range data {
				data[j] = math.Float64frombits(binary.LittleEndian.Uint64(rawData[j*8 : j*8+8]))
			}

			seg := segment{
				target:   target,
				center:   center,
				dataType: dataType,
				startSec: startSec,
				endSec:   endSec,
				init:     data[nWords-4],
				intLen:   data[nWords-3],
				rsize:    int(data[nWords-2]),
				n:        int(data[nWords-1]),
				data:     data[:nWords-4],
			}
			if dataType == 2 {
				seg.nCoeffs = (seg.rsize - 2) / 3
			} else {
				seg.nCoeffs = (seg.rsize - 2) / 6
			}

			k.segments = append(k.segments, seg)
			key := [2]int{target, center}
			k.segMap[key] = append(k.segMap[key], &k.segments[len(k.segments)-1])

			pos += summaryBytes
		}

		if nextRec == 0.0 {
			break
		}
		recNum = int(nextRec)
	}

	for _, segs := range k.segMap {
		sort.Slice(segs, func(i, j int) bool { return segs[i].startSec < segs[j].startSec })
	}

	if err := k.buildChains(); err != nil {
		return nil, simerr.NewIoError("building body chains", err)
	}
	return k, nil
}

// Segments returns every segment's coverage, per spec §6's segments() op.
func (k *Kernel) Segments() []SegmentInfo {
	out := make([]SegmentInfo, len(k.segments))
	for i, s := range k.segments {
		out[i] = SegmentInfo{
			Target: s.target, Observer: s.center,
			StartSec: s.startSec, EndSec: s.endSec,
			RecordType: s.dataType,
		}
	}
	return out
}

// State returns (pos_km, vel_km_per_day) for target relative to observer
// at the given TDB seconds past J2000, per spec §6's opaque reader
// contract. Fails with OutOfRange if the target and observer don't both
// chain to the kernel's common root within its coverage.
func (k *Kernel) State(secondsPastJ2000 float64, target, observer int) (posKm, velKmPerDay [3]float64, err error) {
	targetPos, err := k.bodyWrtRoot(target, secondsPastJ2000)
	if err != nil {
		return posKm, velKmPerDay, err
	}
	observerPos, err := k.bodyWrtRoot(observer, secondsPastJ2000)
	if err != nil {
		return posKm, velKmPerDay, err
	}
	targetVel, err := k.bodyVelWrtRoot(target, secondsPastJ2000)
	if err != nil {
		return posKm, velKmPerDay, err
	}
	observerVel, err := k.bodyVelWrtRoot(observer, secondsPastJ2000)
	if err != nil {
		return posKm, velKmPerDay, err
	}
	return sub3(targetPos, observerPos), sub3(targetVel, observerVel), nil
}

func (k *Kernel) bodyWrtRoot(body int, seconds float64) ([3]float64, error) {
	if body == SSB {
		return [3]float64{}, nil
	}
	chain, ok := k.chains[body]
	if !ok {
		return [3]float64{}, simerr.NewOutOfRange("", seconds, fmt.Sprintf("no chain to root for body %d", body))
	}
	var pos [3]float64
	for _, link := range chain {
		p, err := k.segPosition(link.target, link.center, seconds)
		if err != nil {
			return [3]float64{}, err
		}
		pos = add3(pos, p)
	}
	return pos, nil
}

func (k *Kernel) bodyVelWrtRoot(body int, seconds float64) ([3]float64, error) {
	if body == SSB {
		return [3]float64{}, nil
	}
	chain, ok := k.chains[body]
	if !ok {
		return [3]float64{}, simerr.NewOutOfRange("", seconds, fmt.Sprintf("no chain to root for body %d", body))
	}
	var vel [3]float64
	for _, link := range chain {
		v, err := k.segVelocity(link.target, link.center, seconds)
		if err != nil {
			return [3]float64{}, err
		}
		vel = add3(vel, v)
	}
	return vel, nil
}

func (k *Kernel) segPosition(target, center int, seconds float64) ([3]float64, error) {
	seg, err := k.findSegment(target, center, seconds)
	if err != nil {
		return [3]float64{}, err
	}
	idx := clampIndex(int((seconds-seg.init)/seg.intLen), seg.n)
	tc := normalizedTime(seconds, seg, idx)

	recStart := idx * seg.rsize
	var pos [3]float64
	for comp := 0; comp < 3; comp++ {
		cStart := recStart + 2 + comp*seg.nCoeffs
		pos[comp] = chebyshev(seg.data[cStart:cStart+seg.nCoeffs], tc)
	}
	return pos, nil
}

func (k *Kernel) segVelocity(target, center int, seconds float64) ([3]float64, error) {
	seg, err := k.findSegment(target, center, seconds)
	if err != nil {
		return [3]float64{}, err
	}
	idx := clampIndex(int((seconds-seg.init)/seg.intLen), seg.n)
	tc := normalizedTime(seconds, seg, idx)

	recStart := idx * seg.rsize
	var vel [3]float64
	if seg.dataType == 3 {
		for comp := 0; comp < 3; comp++ {
			cStart := recStart + 2 + (3+comp)*seg.nCoeffs
			vel[comp] = chebyshev(seg.data[cStart:cStart+seg.nCoeffs], tc) * secPerDay
		}
	} else {
		scale := 2.0 * secPerDay / seg.intLen
		for comp := 0; comp < 3; comp++ {
			cStart := recStart + 2 + comp*seg.nCoeffs
			vel[comp] = chebyshevDerivative(seg.data[cStart:cStart+seg.nCoeffs], tc) * scale
		}
	}
	return vel, nil
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func normalizedTime(seconds float64, seg *segment, idx int) float64 {
	offset := seconds - seg.init - float64(idx)*seg.intLen
	return 2.0*offset/seg.intLen - 1.0
}

func (k *Kernel) findSegment(target, center int, seconds float64) (*segment, error) {
	key := [2]int{target, center}
	segs := k.segMap[key]
	if len(segs) == 0 {
		return nil, simerr.NewOutOfRange("", seconds, fmt.Sprintf("no segment for target=%d center=%d", target, center))
	}
	for _, seg := range segs {
		if seconds >= seg.startSec && seconds <= seg.endSec {
			return seg, nil
		}
	}
	if seconds < segs[0].startSec {
		return nil, simerr.NewOutOfRange("", seconds, "before first segment's start")
	}
	return nil, simerr.NewOutOfRange("", seconds, "after last segment's end")
}

func (k *Kernel) buildChains() error {
	for key := range k.segMap {
		target := key[0]
		if _, exists := k.chains[target]; exists {
			continue
		}
		if err := k.walkChain(target); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kernel) walkChain(body int) error {
	if body == SSB {
		return nil
	}
	var path []chainLink
	visited := make(map[int]bool)
	current := body
	for current != SSB {
		if visited[current] {
			return fmt.Errorf("cycle detected in chain for body %d at body %d", body, current)
		}
		visited[current] = true

		center, found := k.findCenter(current)
		if !found {
			return fmt.Errorf("body %d has no segment (needed in chain for body %d)", current, body)
		}
		path = append(path, chainLink{target: current, center: center})
		current = center
	}
	for i := range path {
		b := path[i].target
		if _, exists := k.chains[b]; !exists {
			k.chains[b] = path[i:]
		}
	}
	return nil
}

func (k *Kernel) findCenter(target int) (int, bool) {
	for key := range k.segMap {
		if key[0] == target {
			return key[1], true
		}
	}
	return 0, false
}

// chebyshev evaluates a Chebyshev polynomial series via the Clenshaw
// recurrence. coeffs are the Chebyshev coefficients, s the normalized time
// in [-1, 1].
func chebyshev(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return coeffs[0]
	}
	s2 := 2.0 * s
	w0 := coeffs[n-1]
	w1 := 0.0
	for i := n - 2; i >= 1; i-- {
		w0, w1 = coeffs[i]+s2*w0-w1, w0
	}
	return coeffs[0] + s*w0 - w1
}

// chebyshevDerivative evaluates the derivative series of coeffs at s,
// used to differentiate Type 2 (position-only) segments for velocity.
func chebyshevDerivative(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n < 2 {
		return 0
	}
	m := n - 1
	dc := make([]float64, m)
	for j := m - 1; j >= 1; j-- {
		var djp2 float64
		if j+2 < m {
			djp2 = dc[j+2]
		}
		dc[j] = djp2 + 2.0*float64(j+1)*coeffs[j+1]
	}
	var d2 float64
	if m > 2 {
		d2 = dc[2]
	}
	dc[0] = (d2 + 2.0*coeffs[1]) / 2.0
	return chebyshev(dc, s)
}

func add3(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
