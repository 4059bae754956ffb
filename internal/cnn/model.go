// Package cnn implements the sentence regressor: a frozen embedding lookup
// followed by Conv1D, MaxPool1D, a ReLU hidden layer and a linear output unit,
// trained on mean squared error with Adadelta.
package cnn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/spacesedan/sstflow/internal/models"
)

var (
	ErrBadConfig = errors.New("invalid model configuration")
	ErrBadInput  = errors.New("invalid model input")
)

type Config struct {
	MaxLen     int     `msgpack:"max_len"`
	Filters    int     `msgpack:"filters"`
	KernelSize int     `msgpack:"kernel_size"`
	PoolSize   int     `msgpack:"pool_size"`
	HiddenDim  int     `msgpack:"hidden_dim"`
	Dropout    float64 `msgpack:"dropout"`
	BatchSize  int     `msgpack:"batch_size"`
	Epochs     int     `msgpack:"epochs"`
	Seed       int64   `msgpack:"seed"`

	LearningRate float64 `msgpack:"learning_rate"`
	Rho          float64 `msgpack:"rho"`
	Epsilon      float64 `msgpack:"epsilon"`
}

func DefaultConfig() Config {
	return Config{
		MaxLen:       56,
		Filters:      60,
		KernelSize:   3,
		PoolSize:     2,
		HiddenDim:    70,
		Dropout:      0.25,
		BatchSize:    32,
		Epochs:       10,
		Seed:         1337,
		LearningRate: 1.0,
		Rho:          0.95,
		Epsilon:      1e-6,
	}
}

func (c Config) validate() error {
	switch {
	case c.MaxLen <= 0, c.Filters <= 0, c.KernelSize <= 0, c.PoolSize <= 0, c.HiddenDim <= 0:
		return fmt.Errorf("%w: sizes must be positive", ErrBadConfig)
	case c.KernelSize > c.MaxLen:
		return fmt.Errorf("%w: kernel %d longer than sequence %d", ErrBadConfig, c.KernelSize, c.MaxLen)
	case (c.MaxLen-c.KernelSize+1)/c.PoolSize == 0:
		return fmt.Errorf("%w: pooling leaves no features", ErrBadConfig)
	case c.Dropout < 0 || c.Dropout >= 1:
		return fmt.Errorf("%w: dropout %g", ErrBadConfig, c.Dropout)
	case c.BatchSize <= 0 || c.Epochs <= 0:
		return fmt.Errorf("%w: batch size and epochs must be positive", ErrBadConfig)
	case c.LearningRate <= 0 || c.Rho <= 0 || c.Rho >= 1 || c.Epsilon <= 0:
		return fmt.Errorf("%w: optimiser settings", ErrBadConfig)
	}
	return nil
}

// layout holds views into the flat parameter (or gradient) buffer.
type layout struct {
	convW   []float64 // Filters x (KernelSize*dim)
	convB   []float64 // Filters
	hiddenW []float64 // HiddenDim x flat
	hiddenB []float64 // HiddenDim
	outW    []float64 // HiddenDim
	outB    []float64 // 1
}

type Model struct {
	cfg   Config
	embed *mat.Dense
	dim   int

	positions int // conv output length
	pooled    int // pool output length
	flat      int // pooled * Filters
	window    int // KernelSize * dim

	params []float64
	p      layout
	opt    *adadelta
	rng    *rand.Rand
}

// New builds a model over a frozen embedding matrix with Glorot-uniform
// weights and zero biases.
func New(cfg Config, embedding models.EmbeddingMatrix) (*Model, error) {
	m, err := newShell(cfg, embedding)
	if err != nil {
		return nil, err
	}

	m.glorot(m.p.convW, m.window, cfg.KernelSize*cfg.Filters)
	m.glorot(m.p.hiddenW, m.flat, cfg.HiddenDim)
	m.glorot(m.p.outW, cfg.HiddenDim, 1)
	return m, nil
}

func newShell(cfg Config, embedding models.EmbeddingMatrix) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if embedding.Rows < 2 || embedding.Dim <= 0 || len(embedding.Data) != embedding.Rows*embedding.Dim {
		return nil, fmt.Errorf("%w: embedding matrix is %dx%d with %d values",
			ErrBadConfig, embedding.Rows, embedding.Dim, len(embedding.Data))
	}

	m := &Model{
		cfg:   cfg,
		embed: mat.NewDense(embedding.Rows, embedding.Dim, embedding.Data),
		dim:   embedding.Dim,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	m.positions = cfg.MaxLen - cfg.KernelSize + 1
	m.pooled = m.positions / cfg.PoolSize
	m.flat = m.pooled * cfg.Filters
	m.window = cfg.KernelSize * m.dim

	m.params = make([]float64, m.numParams())
	m.p = m.views(m.params)
	m.opt = newAdadelta(len(m.params), cfg.LearningRate, cfg.Rho, cfg.Epsilon)
	return m, nil
}

func (m *Model) numParams() int {
	c := m.cfg
	return c.Filters*m.window + c.Filters + c.HiddenDim*m.flat + c.HiddenDim + c.HiddenDim + 1
}

func (m *Model) views(buf []float64) layout {
	c := m.cfg
	var l layout
	off := 0
	take := func(n int) []float64 {
		s := buf[off : off+n : off+n]
		off += n
		return s
	}
	l.convW = take(c.Filters * m.window)
	l.convB = take(c.Filters)
	l.hiddenW = take(c.HiddenDim * m.flat)
	l.hiddenB = take(c.HiddenDim)
	l.outW = take(c.HiddenDim)
	l.outB = take(1)
	return l
}

func (m *Model) glorot(w []float64, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = (m.rng.Float64()*2 - 1) * limit
	}
}

func (m *Model) Config() Config {
	return m.cfg
}

// NumParams counts trainable parameters; the embedding matrix is frozen and
// not included.
func (m *Model) NumParams() int {
	return len(m.params)
}

func (m *Model) checkInput(x [][]int) error {
	rows, _ := m.embed.Dims()
	for i, row := range x {
		if len(row) != m.cfg.MaxLen {
			return fmt.Errorf("%w: row %d has length %d, want %d", ErrBadInput, i, len(row), m.cfg.MaxLen)
		}
		for _, idx := range row {
			if idx < 0 || idx >= rows {
				return fmt.Errorf("%w: row %d index %d outside embedding rows %d", ErrBadInput, i, idx, rows)
			}
		}
	}
	return nil
}

// workspace carries one sample's activations through forward and backward.
type workspace struct {
	x        []float64 // MaxLen*dim, post dropout
	conv     []float64 // positions*Filters, post ReLU
	argmax   []int     // pooled*Filters, index into conv
	pooled   []float64 // flat
	hidden   []float64 // HiddenDim, post dropout and ReLU
	hMask    []float64 // HiddenDim dropout scale (0 or 1/(1-p))
	dPooled  []float64
	dConv    []float64
	training bool
}

func (m *Model) newWorkspace() *workspace {
	return &workspace{
		x:       make([]float64, m.cfg.MaxLen*m.dim),
		conv:    make([]float64, m.positions*m.cfg.Filters),
		argmax:  make([]int, m.flat),
		pooled:  make([]float64, m.flat),
		hidden:  make([]float64, m.cfg.HiddenDim),
		hMask:   make([]float64, m.cfg.HiddenDim),
		dPooled: make([]float64, m.flat),
		dConv:   make([]float64, m.positions*m.cfg.Filters),
	}
}

func (m *Model) dropoutScale() float64 {
	if m.cfg.Dropout == 0 {
		return 1
	}
	if m.rng.Float64() < m.cfg.Dropout {
		return 0
	}
	return 1 / (1 - m.cfg.Dropout)
}

func (m *Model) forward(ws *workspace, row []int) float64 {
	c := m.cfg
	d := m.dim
	dropping := ws.training && c.Dropout > 0

	for t, idx := range row {
		dst := ws.x[t*d : (t+1)*d]
		copy(dst, m.embed.RawRowView(idx))
		if dropping {
			for j := range dst {
				dst[j] *= m.dropoutScale()
			}
		}
	}

	for p := 0; p < m.positions; p++ {
		win := ws.x[p*d : p*d+m.window]
		for f := 0; f < c.Filters; f++ {
			z := floats.Dot(m.p.convW[f*m.window:(f+1)*m.window], win) + m.p.convB[f]
			ws.conv[p*c.Filters+f] = math.Max(z, 0)
		}
	}

	for q := 0; q < m.pooled; q++ {
		base := q * c.PoolSize
		for f := 0; f < c.Filters; f++ {
			best := base*c.Filters + f
			for k := 1; k < c.PoolSize; k++ {
				if i := (base+k)*c.Filters + f; ws.conv[i] > ws.conv[best] {
					best = i
				}
			}
			ws.argmax[q*c.Filters+f] = best
			ws.pooled[q*c.Filters+f] = ws.conv[best]
		}
	}

	out := m.p.outB[0]
	for j := 0; j < c.HiddenDim; j++ {
		z := floats.Dot(m.p.hiddenW[j*m.flat:(j+1)*m.flat], ws.pooled) + m.p.hiddenB[j]
		ws.hMask[j] = 1
		if dropping {
			ws.hMask[j] = m.dropoutScale()
		}
		ws.hidden[j] = math.Max(z*ws.hMask[j], 0)
		out += m.p.outW[j] * ws.hidden[j]
	}
	return out
}

// backward accumulates d(loss)/d(params) into g given dOut = d(loss)/d(output).
func (m *Model) backward(ws *workspace, dOut float64, g layout) {
	c := m.cfg

	g.outB[0] += dOut
	floats.AddScaled(g.outW, dOut, ws.hidden)

	for i := range ws.dPooled {
		ws.dPooled[i] = 0
	}
	for j := 0; j < c.HiddenDim; j++ {
		dz := 0.0
		if ws.hidden[j] > 0 {
			dz = dOut * m.p.outW[j] * ws.hMask[j]
		}
		if dz == 0 {
			continue
		}
		g.hiddenB[j] += dz
		floats.AddScaled(g.hiddenW[j*m.flat:(j+1)*m.flat], dz, ws.pooled)
		floats.AddScaled(ws.dPooled, dz, m.p.hiddenW[j*m.flat:(j+1)*m.flat])
	}

	for i := range ws.dConv {
		ws.dConv[i] = 0
	}
	for i, src := range ws.argmax {
		ws.dConv[src] += ws.dPooled[i]
	}

	d := m.dim
	for p := 0; p < m.positions; p++ {
		win := ws.x[p*d : p*d+m.window]
		for f := 0; f < c.Filters; f++ {
			i := p*c.Filters + f
			dz := ws.dConv[i]
			if dz == 0 || ws.conv[i] <= 0 {
				continue
			}
			g.convB[f] += dz
			floats.AddScaled(g.convW[f*m.window:(f+1)*m.window], dz, win)
		}
	}
}

// batchGradient fills grad with the mean-squared-error gradient over the
// batch and returns the batch loss.
func (m *Model) batchGradient(ws *workspace, x [][]int, y []float64, grad []float64) float64 {
	for i := range grad {
		grad[i] = 0
	}
	g := m.views(grad)

	n := float64(len(x))
	loss := 0.0
	for i, row := range x {
		out := m.forward(ws, row)
		diff := out - y[i]
		loss += diff * diff
		m.backward(ws, 2*diff/n, g)
	}
	return loss / n
}

// Predict scores padded index rows without dropout.
func (m *Model) Predict(x [][]int) ([]float64, error) {
	if err := m.checkInput(x); err != nil {
		return nil, err
	}
	ws := m.newWorkspace()
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.forward(ws, row)
	}
	return out, nil
}
