package snackbar

import (
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/jmylchreest/snackbar/internal/mainloop"
)

// animation drives a frame from one position to another with a damped
// spring. Progress runs from 0 to 1 and may overshoot; once the configured
// duration has elapsed the frame snaps to its target and done runs.
type animation struct {
	loop    mainloop.Loop
	spring  harmonica.Spring
	step    time.Duration
	total   time.Duration
	elapsed time.Duration

	from, to, current Frame
	pos, vel          float64

	timer  mainloop.Timer
	render func(Frame)
	done   func()
	ended  bool
}

// animate starts an animation on loop. Every callback runs on the loop,
// including completion of a zero-length animation.
func animate(loop mainloop.Loop, m Motion, from, to Frame, render func(Frame), done func()) *animation {
	a := &animation{
		loop:    loop,
		total:   m.Duration,
		from:    from,
		to:      to,
		current: from,
		render:  render,
		done:    done,
	}

	if m.Duration <= 0 || m.FPS <= 0 {
		a.timer = loop.AfterFunc(0, a.finish)
		return a
	}

	dt := harmonica.FPS(m.FPS)
	a.step = time.Duration(dt * float64(time.Second))
	a.spring = harmonica.NewSpring(dt, angularFrequency(m), m.Damping)
	a.vel = m.InitialVelocity

	render(from)
	a.timer = loop.AfterFunc(a.step, a.tick)
	return a
}

// angularFrequency picks a stiffness that lets the spring settle within the
// motion duration.
func angularFrequency(m Motion) float64 {
	damping := m.Damping
	if damping < 0.1 {
		damping = 0.1
	}
	return 4 / (damping * m.Duration.Seconds())
}

func (a *animation) tick() {
	a.timer = nil
	if a.ended {
		return
	}

	a.elapsed += a.step
	if a.elapsed >= a.total {
		a.finish()
		return
	}

	a.pos, a.vel = a.spring.Update(a.pos, a.vel, 1)
	a.current = a.from.Lerp(a.to, a.pos)
	a.render(a.current)
	a.timer = a.loop.AfterFunc(a.step, a.tick)
}

func (a *animation) finish() {
	a.timer = nil
	if a.ended {
		return
	}
	a.ended = true
	a.current = a.to
	a.render(a.to)
	if a.done != nil {
		a.done()
	}
}

// stop halts the animation where it is and returns the current frame.
// The completion callback does not run.
func (a *animation) stop() Frame {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.ended = true
	return a.current
}
