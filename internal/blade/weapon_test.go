package blade_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/modes"
)

var _ = Describe("Weapon", func() {
	var b *bench

	BeforeEach(func() {
		b = newBench(blade.DefaultConfig())
	})

	Describe("spawning", func() {
		It("is not ready until every fragment exists", func() {
			b.step()
			Expect(b.weapon.Ready()).To(BeFalse())
			Expect(b.world.PendingSpawns()).To(Equal(blade.Count))

			Expect(b.runUntil(1, b.weapon.Ready)).To(BeTrue())
			Expect(b.weapon.Parts()).To(HaveLen(blade.Count))
			Expect(b.weapon.Locking()).To(BeTrue())
			Expect(b.weapon.Mode().Name()).To(Equal("sword"))
		})

		It("ignores collisions between fragments and with the root", func() {
			Expect(b.runUntil(1, b.weapon.Ready)).To(BeTrue())
			parts := b.weapon.Parts()
			for _, f := range parts {
				Expect(b.world.Ignored(f.Body(), b.root)).To(BeTrue())
				for _, o := range parts {
					if o != f {
						Expect(b.world.Ignored(f.Body(), o.Body())).To(BeTrue())
					}
				}
			}
		})
	})

	Describe("assembly", func() {
		It("locks every fragment at rest relative to the root", func() {
			b.assemble()
			b.run(1)
			Expect(b.allLocked()).To(BeTrue())
			for _, f := range b.weapon.Parts() {
				at := f.Pose().Position
				rel := b.world.Velocity(f.Body()).Sub(b.world.PointVelocity(b.root, at))
				Expect(rel.Len()).To(BeNumerically("<", 0.05), "%v", f)
				Expect(at.Sub(f.GuidePose().Position).Len()).To(BeNumerically("<", 0.05), "%v", f)
			}
			Expect(b.weapon.Switches()).To(Equal(0))
		})
	})

	Describe("tapping the button", func() {
		BeforeEach(func() {
			b.assemble()
		})

		It("throws every fragment at three times the root velocity", func() {
			v := mgl64.Vec3{1.5, 0, 0}
			b.tap()
			Expect(b.weapon.Mode().Name()).To(Equal("expanded"))
			b.moving(v)

			Expect(b.weapon.Mode().Name()).To(Equal("sword"))
			Expect(b.weapon.Locking()).To(BeFalse())
			Expect(b.weapon.Switches()).To(Equal(2))
			for _, f := range b.weapon.Parts() {
				Expect(f.IsFree()).To(BeTrue(), "%v", f)
				got := b.world.Velocity(f.Body())
				Expect(got.Sub(v.Mul(3)).Len()).To(BeNumerically("<", 1e-6), "%v", f)
			}
		})

		It("reforms on the next tap", func() {
			b.tap()
			b.step()
			Expect(b.weapon.Locking()).To(BeFalse())
			b.run(0.5)
			for _, f := range b.weapon.Parts() {
				Expect(f.IsFree()).To(BeTrue(), "%v", f)
			}

			b.tap()
			b.step()
			Expect(b.weapon.Locking()).To(BeTrue())
			for _, f := range b.weapon.Parts() {
				Expect(f.IsFree()).To(BeFalse(), "%v", f)
			}
			b.assemble()
		})

		It("keeps the blade locked after a long press", func() {
			b.dev.SetButton(engine.Right, true)
			b.run(0.5)
			b.dev.SetButton(engine.Right, false)
			b.step()
			Expect(b.weapon.Locking()).To(BeTrue())
			Expect(b.weapon.WasLocking()).To(BeTrue())
			for _, f := range b.weapon.Parts() {
				Expect(f.IsFree()).To(BeFalse(), "%v", f)
			}
		})
	})

	Describe("mode selection", func() {
		BeforeEach(func() {
			b.assemble()
		})

		It("picks the shield over the expanded blade", func() {
			b.dev.SetButton(engine.Right, true)
			b.dev.SetTrigger(engine.Right, true)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("shield"))
			Expect(b.weapon.Switches()).To(Equal(1))
			Expect(b.weapon.Rig().Shield()).To(BeTrue())

			b.dev.SetTrigger(engine.Right, false)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("expanded"))
			Expect(b.weapon.Rig().Shield()).To(BeFalse())
			Expect(b.weapon.Rig().Expanded()).To(BeTrue())
		})

		It("switches at most once per frame", func() {
			seen := b.weapon.Switches()
			b.dev.SetButton(engine.Right, true)
			b.step()
			Expect(b.weapon.Switches()).To(Equal(seen + 1))
			b.dev.SetTrigger(engine.Right, true)
			b.step()
			Expect(b.weapon.Switches()).To(Equal(seen + 2))
			b.step()
			Expect(b.weapon.Switches()).To(Equal(seen + 2))
		})

		It("detaches the cannon grip and keeps it out of reform", func() {
			grip := b.grab(engine.Left, modes.CannonTarget)
			b.step()

			Expect(b.weapon.Mode().Name()).To(Equal("cannon"))
			Expect(grip.IsFree()).To(BeTrue())
			Expect(grip.HasJoint()).To(BeFalse())
			Expect(b.weapon.ShouldReform(grip)).To(BeFalse())
			Expect(b.weapon.LockToRoot()).To(BeFalse())
			Expect(b.weapon.Rig().Enabled()).To(BeFalse())
			Expect(b.weapon.Rig().Parented()).To(BeFalse())

			b.run(1)
			Expect(grip.IsFree()).To(BeTrue())
		})

		It("restores the rig when a grabbed mode exits", func() {
			b.grab(engine.Left, modes.SawTarget)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("saw"))
			Expect(b.weapon.Rig().Parented()).To(BeFalse())

			b.run(0.5)
			b.dev.Release(engine.Left)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("sword"))
			Expect(b.weapon.Rig().Enabled()).To(BeTrue())
			Expect(b.weapon.Rig().Parented()).To(BeTrue())
			Expect(b.weapon.LockToRoot()).To(BeTrue())
			Expect(b.weapon.Switches()).To(Equal(2))
			b.assemble()
		})

		It("puts back the rig setup it found on entry", func() {
			b.weapon.SetLockToRoot(false)
			b.weapon.Rig().SetEnabled(false)
			b.grab(engine.Left, modes.SawTarget)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("saw"))

			b.dev.Release(engine.Left)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("sword"))
			Expect(b.weapon.Rig().Enabled()).To(BeFalse())
			Expect(b.weapon.Rig().Parented()).To(BeTrue())
			Expect(b.weapon.LockToRoot()).To(BeFalse())
		})

		It("needs the matching spell for fragment 11", func() {
			b.grab(engine.Left, modes.SpellTarget)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("sword"))

			b.dev.SetSpell(engine.Left, engine.SpellFire)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("flamethrower"))

			b.dev.SetSpell(engine.Left, engine.SpellGravity)
			b.step()
			Expect(b.weapon.Mode().Name()).To(Equal("gravity"))
		})
	})

	Describe("hand collisions", func() {
		It("keeps ignoring a hand that regrabs the root within a frame", func() {
			b.assemble()
			hand := b.dev.Hand(engine.Right).Body
			for _, f := range b.weapon.Parts() {
				Expect(b.world.Ignored(f.Body(), hand)).To(BeTrue(), "%v", f)
			}

			b.dev.Release(engine.Right)
			b.step()
			b.dev.Grab(engine.Right, b.root, grip)
			b.step()
			b.step()
			Expect(b.weapon.RootHolders()).To(ConsistOf(engine.Right))
			for _, f := range b.weapon.Parts() {
				Expect(b.world.Ignored(f.Body(), hand)).To(BeTrue(), "%v", f)
			}
		})
	})

	Describe("holstering", func() {
		It("hides locked fragments and brings them back", func() {
			b.assemble()
			b.dev.SetHolstered(b.root, true)
			b.step()
			for _, f := range b.weapon.Parts() {
				Expect(f.Holstered()).To(BeTrue(), "%v", f)
				Expect(b.world.Kinematic(f.Body())).To(BeTrue())
			}

			b.dev.SetHolstered(b.root, false)
			b.step()
			for _, f := range b.weapon.Parts() {
				Expect(f.Holstered()).To(BeFalse(), "%v", f)
				Expect(b.world.Kinematic(f.Body())).To(BeFalse())
			}
			b.assemble()
		})
	})

	Describe("respawning", func() {
		It("replaces a fragment whose body vanished", func() {
			b.assemble()
			old := b.weapon.Part(5).Body()
			b.world.Despawn(old)
			b.step()
			Expect(b.weapon.Part(5)).To(BeNil())

			b.step()
			Expect(b.weapon.Ready()).To(BeFalse())
			Expect(b.runUntil(1, b.weapon.Ready)).To(BeTrue())

			f := b.weapon.Part(5)
			Expect(f).NotTo(BeNil())
			Expect(f.Body()).NotTo(Equal(old))
			Expect(b.world.Ignored(f.Body(), b.root)).To(BeTrue())
			Expect(b.world.Ignored(f.Body(), b.weapon.Part(6).Body())).To(BeTrue())
			b.assemble()
		})
	})

	Describe("despawning", func() {
		It("releases everything when the root is destroyed", func() {
			b.assemble()
			var bodies []engine.BodyID
			for _, f := range b.weapon.Parts() {
				bodies = append(bodies, f.Body())
			}
			b.world.DestroyBody(b.root)
			b.step()

			Expect(b.weapon.Despawned()).To(BeTrue())
			Expect(b.weapon.Mode()).To(BeNil())
			Expect(b.weapon.Parts()).To(BeEmpty())
			for _, id := range bodies {
				Expect(b.world.JointsOn(id)).To(Equal(0))
			}
			Expect(b.fx.VisibleLabels()).To(BeEmpty())

			b.step()
			Expect(b.weapon.Despawned()).To(BeTrue())
		})
	})
})

var _ = Describe("Tutorial", func() {
	It("coaches the free hand toward the spell modes", func() {
		cfg := blade.DefaultConfig()
		cfg.Tutorial = true
		b := newBench(cfg)
		b.assemble()

		Expect(b.weapon.HandleA().Shown()).To(BeTrue())
		Expect(b.weapon.HandleB().Text()).To(Equal("Tap A/X to Shatter\n the blade"))
		Expect(b.weapon.OtherHand().Text()).To(ContainSubstring("Select Fire, Lightning, or Gravity"))

		b.dev.SetSpell(engine.Left, engine.SpellLightning)
		b.step()
		Expect(b.weapon.OtherHand().Text()).To(HavePrefix("Arc Cannon (Lightning spell) selected!"))
		Expect(b.weapon.ImbueHandle().Text()).To(Equal("Grab this shard for Arc Cannon mode"))
	})

	It("resolves the button glyph for the holding hand", func() {
		cfg := blade.DefaultConfig()
		cfg.Tutorial = true
		b := newBench(cfg)
		b.assemble()
		b.dev.SetButton(engine.Right, true)
		b.step()
		Expect(b.weapon.HandleA().Text()).To(Equal("Release A/Touchpad to retract the blade"))
	})

	It("stays silent without the tutorial", func() {
		b := newBench(blade.DefaultConfig())
		b.assemble()
		Expect(b.fx.VisibleLabels()).To(BeEmpty())
	})
})

var _ = Describe("Assembled flash", func() {
	It("pulses every fragment once the blade locks", func() {
		cfg := blade.DefaultConfig()
		cfg.AssembledFlash = true
		b := newBench(cfg)
		b.assemble()
		b.step()
		flashing := 0
		for _, f := range b.weapon.Parts() {
			if f.Flashing() {
				flashing++
			}
		}
		Expect(flashing).To(BeNumerically(">", 0))
		b.run(1)
		for _, f := range b.weapon.Parts() {
			Expect(f.Flashing()).To(BeFalse())
			Expect(b.fx.Emission(f.Body())).To(BeZero())
		}
	})
})
