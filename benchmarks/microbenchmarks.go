package benchmarks

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sarchlab/pipesim/insts"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each
// benchmark targets a specific pipeline characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUse(),
		storeAfterCompute(),
		multiplyChain(),
		divideThroughput(),
		mixedOperations(),
	}
}

// GetScenarioBenchmarks returns the reference scenarios used to check the
// timing model against hand-computed schedules.
func GetScenarioBenchmarks() []Benchmark {
	return []Benchmark{
		{
			Name:        "single_add",
			Description: "one ADD - fills and drains the pipeline",
			Program:     []insts.Instruction{add(1, 2, 3)},
		},
		{
			Name:        "add_sub_dependency",
			Description: "SUB reads the register ADD writes",
			Program:     []insts.Instruction{add(1, 2, 3), sub(4, 1, 5)},
		},
		{
			Name:        "load_use_pair",
			Description: "ADD reads the register LOAD writes",
			Program: []insts.Instruction{
				insts.NewLoad(1, 2, 0),
				add(3, 1, 4),
			},
		},
		{
			Name:        "independent_multiplies",
			Description: "three MULs without dependencies - structural stalls only",
			Program: []insts.Instruction{
				mul(1, 2, 3),
				mul(4, 5, 6),
				mul(7, 8, 9),
			},
		},
	}
}

func add(rd, rs1, rs2 insts.Reg) insts.Instruction {
	return insts.NewArith(insts.OpADD, rd, rs1, rs2)
}

func sub(rd, rs1, rs2 insts.Reg) insts.Instruction {
	return insts.NewArith(insts.OpSUB, rd, rs1, rs2)
}

func mul(rd, rs1, rs2 insts.Reg) insts.Instruction {
	return insts.NewArith(insts.OpMUL, rd, rs1, rs2)
}

func div(rd, rs1, rs2 insts.Reg) insts.Instruction {
	return insts.NewArith(insts.OpDIV, rd, rs1, rs2)
}

// 1. Arithmetic Sequential - ALU throughput with independent operations
func arithmeticSequential() Benchmark {
	program := make([]insts.Instruction, 0, 20)
	for i := range 20 {
		rd := insts.Reg(1 + i%5)
		program = append(program, add(rd, 10, 11))
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDs - measures ALU throughput",
		Program:     program,
	}
}

// 2. Dependency Chain - each ADD reads the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDs - measures forwarding benefit",
		Program:     buildDependencyChain(20),
	}
}

// buildDependencyChain alternates between two registers so that no
// instruction reads the register it writes.
func buildDependencyChain(n int) []insts.Instruction {
	program := make([]insts.Instruction, 0, n)
	for i := range n {
		if i%2 == 0 {
			program = append(program, add(2, 1, 3))
		} else {
			program = append(program, add(1, 2, 3))
		}
	}
	return program
}

// 3. Load Use - every load is consumed immediately
func loadUse() Benchmark {
	program := make([]insts.Instruction, 0, 16)
	for i := range 8 {
		rd := insts.Reg(1 + i%4)
		program = append(program,
			insts.NewLoad(rd, 10, int64(8*i)),
			add(rd+4, rd, 11),
		)
	}

	return Benchmark{
		Name:        "load_use",
		Description: "8 LOAD/ADD pairs - measures load-use stalls",
		Program:     program,
	}
}

// 4. Store After Compute - stored values come straight from the ALU
func storeAfterCompute() Benchmark {
	program := make([]insts.Instruction, 0, 16)
	for i := range 8 {
		rd := insts.Reg(1 + i%4)
		program = append(program,
			add(rd, 10, 11),
			insts.NewStore(rd, 12, int64(8*i)),
		)
	}

	return Benchmark{
		Name:        "store_after_compute",
		Description: "8 ADD/STORE pairs - store data forwarded to Memory",
		Program:     program,
	}
}

// 5. Multiply Chain - long-latency dependent operations
func multiplyChain() Benchmark {
	program := make([]insts.Instruction, 0, 8)
	for i := range 8 {
		if i%2 == 0 {
			program = append(program, mul(2, 1, 3))
		} else {
			program = append(program, mul(1, 2, 3))
		}
	}

	return Benchmark{
		Name:        "multiply_chain",
		Description: "8 dependent MULs - latency-bound",
		Program:     program,
	}
}

// 6. Divide Throughput - independent long-latency operations
func divideThroughput() Benchmark {
	program := make([]insts.Instruction, 0, 8)
	for i := range 8 {
		program = append(program, div(insts.Reg(1+i), 20, 21))
	}

	return Benchmark{
		Name:        "divide_throughput",
		Description: "8 independent DIVs - Execute occupancy bound",
		Program:     program,
	}
}

// 7. Mixed Operations - a small kernel: load, scale, accumulate, store
func mixedOperations() Benchmark {
	program := make([]insts.Instruction, 0, 20)
	for i := range 4 {
		off := int64(8 * i)
		program = append(program,
			insts.NewLoad(1, 10, off),
			insts.NewLoad(2, 11, off),
			mul(3, 1, 2),
			add(4, 3, 5),
			insts.NewStore(4, 12, off),
		)
	}

	return Benchmark{
		Name:        "mixed_operations",
		Description: "4 iterations of load, multiply, accumulate, store",
		Program:     program,
	}
}

// Synthetic returns a benchmark of n pseudo-random valid instructions over
// registers R0-R7. The same seed always yields the same program.
func Synthetic(n int, seed uint64) Benchmark {
	rng := rand.New(rand.NewPCG(seed, seed))
	reg := func() insts.Reg { return insts.Reg(rng.IntN(8)) }

	// distinct returns a register different from every register in avoid.
	distinct := func(avoid ...insts.Reg) insts.Reg {
		for {
			r := reg()
			if !slices.Contains(avoid, r) {
				return r
			}
		}
	}

	program := make([]insts.Instruction, 0, n)
	for range n {
		rs1 := reg()
		switch op := insts.Ops[rng.IntN(len(insts.Ops))]; op {
		case insts.OpLOAD:
			program = append(program, insts.NewLoad(distinct(rs1), rs1, int64(8*rng.IntN(64))))
		case insts.OpSTORE:
			program = append(program, insts.NewStore(reg(), rs1, int64(8*rng.IntN(64))))
		default:
			rs2 := reg()
			program = append(program, insts.NewArith(op, distinct(rs1, rs2), rs1, rs2))
		}
	}

	return Benchmark{
		Name:        fmt.Sprintf("synthetic_%d", n),
		Description: fmt.Sprintf("%d random instructions (seed %d)", n, seed),
		Program:     program,
	}
}
